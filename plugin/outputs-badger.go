package plugin

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	St "github.com/W-Mai/simple-compose/types"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
)

// noteKeyLen is session(16) + timestamp(8) + channel(1) + pitch(1) + on(1)
const noteKeyLen = 16 + 8 + 3

type BadgerOutput struct {
	MU        sync.Mutex
	DB        *badger.DB
	BatchSize int
	Buffer    []*St.NoteRecord
}

func NewBadgerOutput(path string, batchSize int) (*BadgerOutput, error) {
	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1)

	return openBadger(opts, batchSize)
}

// NewBadgerMemory keeps everything in RAM, nothing touches disk.
func NewBadgerMemory(batchSize int) (*BadgerOutput, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)

	return openBadger(opts, batchSize)
}

func openBadger(opts badger.Options, batchSize int) (*BadgerOutput, error) {
	db, err := badger.Open(opts)
	if err != nil {
		slog.Error("BadgerOutput failed to open database", slog.Any("error", err))
		return nil, fmt.Errorf("database error: %w", err)
	}

	batchSize = max(batchSize, 1)
	slog.Info("BadgerOutput opened",
		slog.String("path", opts.Dir),
		slog.Int("batchSize", batchSize))

	return &BadgerOutput{
		DB:        db,
		BatchSize: batchSize,
		Buffer:    make([]*St.NoteRecord, 0, batchSize),
	}, nil
}

// WriteNote queues up a batch of notes,
// when batchsize is reached the batch is written
func (bo *BadgerOutput) WriteNote(rec *St.NoteRecord) error {
	bo.MU.Lock()
	defer bo.MU.Unlock()

	bo.Buffer = append(bo.Buffer, rec)
	if len(bo.Buffer) >= bo.BatchSize {
		return bo.flushLocked()
	}
	return nil
}

// WriteBatch performs the key/value creation to be stored
// and actually calls BadgerDB to write the data
func (bo *BadgerOutput) WriteBatch(recs []*St.NoteRecord) error {
	wb := bo.DB.NewWriteBatch()
	defer wb.Cancel()

	for _, r := range recs {
		v, err := NoteEncode(r)
		if err != nil {
			return fmt.Errorf("encode note: %w", err)
		}
		if err := wb.Set(NoteKey(r), v); err != nil {
			slog.Error("BadgerOutput failed to set key in batch",
				slog.Any("error", err),
				slog.Time("noteTime", r.Timestamp),
				slog.Int("pitch", int(r.Pitch)))
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		slog.Error("BadgerOutput failed to flush batch", slog.Any("error", err))
		return fmt.Errorf("batch flush error: %w", err)
	}

	return nil
}

// Flush sends buffered notes to WriteBatch and then clears the buffer
func (bo *BadgerOutput) Flush() error {
	bo.MU.Lock()
	defer bo.MU.Unlock()
	return bo.flushLocked()
}

func (bo *BadgerOutput) flushLocked() error {
	if len(bo.Buffer) == 0 {
		return nil
	}
	err := bo.WriteBatch(bo.Buffer)
	bo.Buffer = bo.Buffer[:0]
	return err
}

// Close returns a Flush error but still attempts to close
func (bo *BadgerOutput) Close() error {
	slog.Info("BadgerOutput closing, flushing buffer",
		slog.Int("bufferSize", len(bo.Buffer)))
	flushErr := bo.Flush()
	closeErr := bo.DB.Close()

	if flushErr != nil {
		slog.Error("BadgerOutput failed to flush on close", slog.Any("error", flushErr))
		return fmt.Errorf("flush failed, close may have failed: %w", flushErr)
	}

	if closeErr != nil {
		slog.Error("BadgerOutput failed to close database", slog.Any("error", closeErr))
		return fmt.Errorf("close failed: %w", closeErr)
	}

	slog.Info("BadgerOutput closed successfully")
	return nil
}

func (bo *BadgerOutput) Type() string { return "BadgerDB" }

// NoteKey creates a composite key: session + timestamp + channel + pitch + edge.
// Keys sort by session first, then chronologically within it.
func NoteKey(rec *St.NoteRecord) []byte {
	key := make([]byte, noteKeyLen)
	copy(key[0:16], rec.Session[:])

	// Positive BigEndian integer so keys sort chronologically
	binary.BigEndian.PutUint64(key[16:24], uint64(rec.Timestamp.UnixNano()))

	key[24] = rec.Channel
	key[25] = rec.Pitch
	if rec.On {
		key[26] = 1
	}
	return key
}

// NoteEncode serializes the record for data storage
func NoteEncode(rec *St.NoteRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NoteDecode deserializes the record data
func NoteDecode(data []byte) (*St.NoteRecord, error) {
	var rec St.NoteRecord
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec)
	return &rec, err
}

// QueryRange retrieves notes with start <= timestamp < end across all sessions,
// ordered by time.
func (bo *BadgerOutput) QueryRange(start, end time.Time) ([]*St.NoteRecord, error) {
	recs, err := bo.scan(nil, func(r *St.NoteRecord) bool {
		return !r.Timestamp.Before(start) && r.Timestamp.Before(end)
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(recs, func(a, b *St.NoteRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	slog.Info("BadgerOutput QueryRange successful", slog.Int("count", len(recs)))
	return recs, nil
}

// QuerySession retrieves every note of one playback, in send order.
func (bo *BadgerOutput) QuerySession(session uuid.UUID) ([]*St.NoteRecord, error) {
	recs, err := bo.scan(session[:], nil)
	if err != nil {
		return nil, err
	}
	slog.Info("BadgerOutput QuerySession successful",
		slog.String("session", session.String()),
		slog.Int("count", len(recs)))
	return recs, nil
}

// scan walks keys under prefix, keeping records that pass keep (all when nil).
func (bo *BadgerOutput) scan(prefix []byte, keep func(*St.NoteRecord) bool) ([]*St.NoteRecord, error) {
	var recs []*St.NoteRecord

	// db.View() callback
	// BadgerDB provides a transaction in which to get item.Value()
	err := bo.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				rec, err := NoteDecode(val)
				if err != nil {
					slog.Error("BadgerOutput failed to decode note", slog.Any("error", err))
					return fmt.Errorf("note decode error: %w", err)
				}
				if keep == nil || keep(rec) {
					recs = append(recs, rec)
				}
				return nil
			})
			if err != nil {
				slog.Error("BadgerOutput callback failure", slog.Any("error", err))
				return fmt.Errorf("item data error: %w", err)
			}
		}
		return nil
	})

	return recs, err
}
