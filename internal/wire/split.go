package wire

import "sort"

// SplitNotification encodes changeValues into one or more notification
// datagrams, each at most maxSize bytes. Keys are assigned to datagrams
// greedily in sorted order so the split is deterministic. A single
// key/value pair that cannot fit on its own is emitted oversized; the
// caller decides whether to send or drop it.
func SplitNotification(changeValues map[string]any, timestamp uint64, maxSize int) ([][]byte, error) {
	whole, err := EncodeNotification(changeValues, timestamp)
	if err != nil {
		return nil, err
	}
	if len(whole) <= maxSize {
		return [][]byte{whole}, nil
	}

	names := make([]string, 0, len(changeValues))
	for name := range changeValues {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts [][]byte
	batch := map[string]any{}
	var batchData []byte

	for _, name := range names {
		batch[name] = changeValues[name]
		trial, err := EncodeNotification(batch, timestamp)
		if err != nil {
			return nil, err
		}
		if len(trial) > maxSize && len(batch) > 1 {
			parts = append(parts, batchData)
			batch = map[string]any{name: changeValues[name]}
			trial, err = EncodeNotification(batch, timestamp)
			if err != nil {
				return nil, err
			}
		}
		batchData = trial
	}
	if len(batch) > 0 {
		parts = append(parts, batchData)
	}
	return parts, nil
}
