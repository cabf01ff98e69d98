package crdt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Wire format for update blobs:
//
//	version uint8 | count uint16 | entries
//	entry: idx uint32 | field uint8 | clock uint64 |
//	       replicaLen uint8 | replica | valueLen uint16 | value
//
// String registers carry the string bytes as value; integer registers carry
// a 4-byte big-endian value. Blobs are opaque to clients and relayed
// verbatim.

const codecVersion = 1

type field uint8

const (
	fieldStreamID field = iota + 1
	fieldWidth
	fieldHeight
)

type entry struct {
	idx     uint32
	field   field
	clock   uint64
	replica string
	strVal  string
	intVal  uint32
}

func encodeEntries(entries []entry) []byte {
	var buf bytes.Buffer
	buf.WriteByte(codecVersion)
	binary.Write(&buf, binary.BigEndian, uint16(len(entries)))

	for _, e := range entries {
		binary.Write(&buf, binary.BigEndian, e.idx)
		buf.WriteByte(byte(e.field))
		binary.Write(&buf, binary.BigEndian, e.clock)
		buf.WriteByte(byte(len(e.replica)))
		buf.WriteString(e.replica)

		var value []byte
		if e.field == fieldStreamID {
			value = []byte(e.strVal)
		} else {
			value = make([]byte, 4)
			binary.BigEndian.PutUint32(value, e.intVal)
		}
		binary.Write(&buf, binary.BigEndian, uint16(len(value)))
		buf.Write(value)
	}
	return buf.Bytes()
}

func decodeEntries(data []byte) ([]entry, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("truncated update: %w", err)
	}
	if version != codecVersion {
		return nil, fmt.Errorf("unsupported update version %d", version)
	}

	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("truncated update: %w", err)
	}

	entries := make([]entry, 0, count)
	for i := 0; i < int(count); i++ {
		var e entry
		if err := binary.Read(r, binary.BigEndian, &e.idx); err != nil {
			return nil, fmt.Errorf("truncated update entry %d: %w", i, err)
		}
		f, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("truncated update entry %d: %w", i, err)
		}
		e.field = field(f)
		if err := binary.Read(r, binary.BigEndian, &e.clock); err != nil {
			return nil, fmt.Errorf("truncated update entry %d: %w", i, err)
		}

		replicaLen, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("truncated update entry %d: %w", i, err)
		}
		replica := make([]byte, replicaLen)
		if _, err := io.ReadFull(r, replica); err != nil {
			return nil, fmt.Errorf("truncated update entry %d: %w", i, err)
		}
		e.replica = string(replica)

		var valueLen uint16
		if err := binary.Read(r, binary.BigEndian, &valueLen); err != nil {
			return nil, fmt.Errorf("truncated update entry %d: %w", i, err)
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, fmt.Errorf("truncated update entry %d: %w", i, err)
		}

		if e.field == fieldStreamID {
			e.strVal = string(value)
		} else {
			if valueLen != 4 {
				return nil, fmt.Errorf("invalid integer register length %d in entry %d", valueLen, i)
			}
			e.intVal = binary.BigEndian.Uint32(value)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
