// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/answerit/core"
)

// Serializers for the stored record types. They are hand-composed from the
// mus-go primitive serializers; field order here IS the wire format, so new
// fields must be appended, never inserted.
var (
	// IDMUS serializes core.ID values.
	IDMUS = idSer{}
	// ChunkMUS serializes core.Chunk values.
	ChunkMUS = chunkSer{}
	// QueryLogEntryMUS serializes core.QueryLogEntry values.
	QueryLogEntryMUS = queryLogEntrySer{}
	// CheckpointMUS serializes core.Checkpoint values.
	CheckpointMUS = checkpointSer{}

	vectorMUS = ord.NewSliceSer[float32](varint.Float32)
	timeMUS   = timeSer{}
)

type idSer struct{}

func (idSer) Marshal(id core.ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (core.ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

func (idSer) Size(id core.ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// timeSer stores timestamps as Unix microseconds.
type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type chunkSer struct{}

func (chunkSer) Marshal(c core.Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(c.Position, bs)
	n += ord.String.Marshal(c.DocID, bs[n:])
	n += ord.String.Marshal(c.ChunkID, bs[n:])
	n += ord.String.Marshal(c.SectionTitle, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	n += timeMUS.Marshal(c.InsertedAt, bs[n:])
	return n
}

func (chunkSer) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var n1 int
	c.Position, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	c.DocID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.ChunkID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.SectionTitle, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkSer) Size(c core.Chunk) (size int) {
	size = varint.Uint64.Size(c.Position)
	size += ord.String.Size(c.DocID)
	size += ord.String.Size(c.ChunkID)
	size += ord.String.Size(c.SectionTitle)
	size += ord.String.Size(c.Text)
	size += vectorMUS.Size(c.Vector)
	size += timeMUS.Size(c.InsertedAt)
	return size
}

func (chunkSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = varint.Uint64.Skip(bs)
	if err != nil {
		return
	}
	for i := 0; i < 4; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMUS.Skip(bs[n:])
	n += n1
	return
}

type queryLogEntrySer struct{}

func (queryLogEntrySer) Marshal(e core.QueryLogEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.Query, bs[n:])
	n += ord.String.Marshal(string(e.Classification), bs[n:])
	n += ord.String.Marshal(e.Model, bs[n:])
	n += varint.Float64.Marshal(e.AvgSimilarity, bs[n:])
	n += varint.Float64.Marshal(e.Confidence, bs[n:])
	n += varint.Int64.Marshal(e.LatencyMillis, bs[n:])
	n += ord.Bool.Marshal(e.Cached, bs[n:])
	n += timeMUS.Marshal(e.Timestamp, bs[n:])
	return n
}

func (queryLogEntrySer) Unmarshal(bs []byte) (e core.QueryLogEntry, n int, err error) {
	var n1 int
	e.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	e.Query, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var classification string
	classification, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Classification = core.Classification(classification)
	e.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.AvgSimilarity, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.LatencyMillis, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Cached, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Timestamp, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (queryLogEntrySer) Size(e core.QueryLogEntry) (size int) {
	size = IDMUS.Size(e.Id)
	size += ord.String.Size(e.Query)
	size += ord.String.Size(string(e.Classification))
	size += ord.String.Size(e.Model)
	size += varint.Float64.Size(e.AvgSimilarity)
	size += varint.Float64.Size(e.Confidence)
	size += varint.Int64.Size(e.LatencyMillis)
	size += ord.Bool.Size(e.Cached)
	size += timeMUS.Size(e.Timestamp)
	return size
}

func (queryLogEntrySer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMUS.Skip(bs[n:])
	n += n1
	return
}

type checkpointSer struct{}

func (checkpointSer) Marshal(c core.Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(c.JobType, bs)
	n += varint.Uint64.Marshal(c.LastPosition, bs[n:])
	n += timeMUS.Marshal(c.UpdatedAt, bs[n:])
	return n
}

func (checkpointSer) Unmarshal(bs []byte) (c core.Checkpoint, n int, err error) {
	var n1 int
	c.JobType, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.LastPosition, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (checkpointSer) Size(c core.Checkpoint) (size int) {
	size = ord.String.Size(c.JobType)
	size += varint.Uint64.Size(c.LastPosition)
	size += timeMUS.Size(c.UpdatedAt)
	return size
}

func (checkpointSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMUS.Skip(bs[n:])
	n += n1
	return
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	return id, err
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, ChunkMUS.Size(*chunk))
	ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalQueryLogEntry serializes a QueryLogEntry to bytes.
func MarshalQueryLogEntry(entry *core.QueryLogEntry) []byte {
	buf := make([]byte, QueryLogEntryMUS.Size(*entry))
	QueryLogEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalQueryLogEntry deserializes a QueryLogEntry from bytes.
func UnmarshalQueryLogEntry(data []byte) (*core.QueryLogEntry, error) {
	entry, _, err := QueryLogEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, CheckpointMUS.Size(*checkpoint))
	CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
