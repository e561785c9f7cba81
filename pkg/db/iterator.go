package db

import (
	"github.com/cockroachdb/pebble"

	"github.com/polywrap/near-engine/pkg/collection/bytes"
)

func iteratePrefix(iter *pebble.Iterator, limit int, reverse bool) ([]KeyValue, error) {
	var data []KeyValue
	valid := iter.First
	next := iter.Next
	if reverse {
		valid = iter.Last
		next = iter.Prev
	}
	for ok := valid(); ok; ok = next() {
		data = append(data, &keyValue{
			key:   bytes.Copy(iter.Key()),
			value: bytes.Copy(iter.Value()),
		})
		if limit >= 0 && len(data) >= limit {
			break
		}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return data, nil
}
