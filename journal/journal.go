package journal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/rocketsim/blobstore"
	"github.com/hupe1980/rocketsim/codec"
	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/subsystem"
)

// Prefix is the blob name prefix under which journals are stored.
const Prefix = "runs/"

var (
	// ErrEmptyRunID is returned when a journal is created without a run id.
	ErrEmptyRunID = errors.New("journal: run id must not be empty")

	// ErrUnknownCompression is returned for an unsupported compression name.
	ErrUnknownCompression = errors.New("journal: unknown compression")

	// ErrNilStore is returned when flushing a journal that has no store.
	ErrNilStore = errors.New("journal: store must not be nil")
)

// Kind classifies a record.
type Kind string

const (
	// KindEvent records a drained event.
	KindEvent Kind = "event"
	// KindStatus records a subsystem status change made by the controller.
	KindStatus Kind = "status"
	// KindOutcome records the terminal outcome of the run.
	KindOutcome Kind = "outcome"
)

// Record is a single journal line.
type Record struct {
	RunID     string    `json:"run_id"`
	Seq       uint64    `json:"seq"`
	Time      time.Time `json:"time"`
	Kind      Kind      `json:"kind"`
	Subsystem string    `json:"subsystem,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	Status    string    `json:"status,omitempty"`
	From      string    `json:"from,omitempty"`
	Priority  string    `json:"priority,omitempty"`
	Amount    int       `json:"amount"`
	Outcome   string    `json:"outcome,omitempty"`
}

// Option configures a Journal.
type Option func(*Journal)

// WithCodec sets the record codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(j *Journal) {
		if c != nil {
			j.codec = c
		}
	}
}

// WithCompression sets the blob compression. Defaults to CompressionNone.
func WithCompression(c Compression) Option {
	return func(j *Journal) { j.compression = c }
}

// WithMaxRecords caps the number of buffered event records. Once the cap
// is reached further events are counted by Dropped but not kept; status
// and outcome records are always kept. Zero means no cap.
func WithMaxRecords(n int) Option {
	return func(j *Journal) {
		if n >= 0 {
			j.maxRecords = n
		}
	}
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		if now != nil {
			j.now = now
		}
	}
}

// Journal collects the controller's view of a run and writes it to a
// blobstore as JSON lines.
//
// It implements controller.MetricsObserver and is safe for concurrent use.
type Journal struct {
	runID       string
	store       blobstore.Store
	codec       codec.Codec
	compression Compression
	now         func() time.Time

	maxRecords int

	mu      sync.Mutex
	seq     uint64
	events  int
	dropped uint64
	records []Record
}

var _ controller.MetricsObserver = (*Journal)(nil)

// New creates a journal for runID that flushes to store.
func New(runID string, store blobstore.Store, opts ...Option) (*Journal, error) {
	if runID == "" {
		return nil, ErrEmptyRunID
	}

	j := &Journal{
		runID:       runID,
		store:       store,
		codec:       codec.Default,
		compression: CompressionNone,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	comp, err := ParseCompression(string(j.compression))
	if err != nil {
		return nil, err
	}
	j.compression = comp
	return j, nil
}

// Name returns the blob name the journal flushes to.
func (j *Journal) Name() string {
	return Prefix + j.runID + ".jsonl" + j.compression.Extension()
}

// Len returns the number of buffered records.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.records)
}

// Dropped returns the number of events discarded because of WithMaxRecords.
func (j *Journal) Dropped() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Records returns a copy of the buffered records.
func (j *Journal) Records() []Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Record(nil), j.records...)
}

func (j *Journal) append(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if r.Kind == KindEvent {
		if j.maxRecords > 0 && j.events >= j.maxRecords {
			j.dropped++
			return
		}
		j.events++
	}

	j.seq++
	r.RunID = j.runID
	r.Seq = j.seq
	r.Time = j.now()
	j.records = append(j.records, r)
}

// OnEvent implements controller.MetricsObserver.
func (j *Journal) OnEvent(e event.Event) {
	j.append(Record{
		Kind:      KindEvent,
		Subsystem: e.SubsystemName(),
		Resource:  e.Resource.Name(),
		Status:    e.Status.String(),
		Priority:  e.Priority.String(),
		Amount:    e.Amount,
	})
}

// OnStatusChange implements controller.MetricsObserver.
func (j *Journal) OnStatusChange(name string, from, to subsystem.Status) {
	j.append(Record{
		Kind:      KindStatus,
		Subsystem: name,
		From:      from.String(),
		Status:    to.String(),
	})
}

// OnOutcome implements controller.MetricsObserver.
func (j *Journal) OnOutcome(o controller.Outcome) {
	j.append(Record{
		Kind:    KindOutcome,
		Outcome: o.String(),
	})
}

// OnDrain implements controller.MetricsObserver.
func (j *Journal) OnDrain(int, time.Duration) {}

// OnQueueDepth implements controller.MetricsObserver.
func (j *Journal) OnQueueDepth(int) {}

// Flush encodes all buffered records and writes them to the store,
// replacing any earlier flush of the same run.
func (j *Journal) Flush(ctx context.Context) error {
	if j.store == nil {
		return ErrNilStore
	}

	data, err := Encode(j.Records(), j.codec, j.compression)
	if err != nil {
		return err
	}

	if err := j.store.Put(ctx, j.Name(), data); err != nil {
		return fmt.Errorf("journal: put %s: %w", j.Name(), err)
	}
	return nil
}

// Encode renders records as JSON lines and compresses the result.
func Encode(records []Record, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}

	var buf bytes.Buffer
	for i := range records {
		b, err := c.Marshal(&records[i])
		if err != nil {
			return nil, fmt.Errorf("journal: encode record %d: %w", records[i].Seq, err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}

	return compress(buf.Bytes(), comp)
}

// Decode reverses Encode.
func Decode(data []byte, c codec.Codec, comp Compression) ([]Record, error) {
	if c == nil {
		c = codec.Default
	}

	raw, err := decompress(data, comp)
	if err != nil {
		return nil, fmt.Errorf("journal: decompress: %w", err)
	}

	var records []Record
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var r Record
		if err := c.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("journal: decode line %d: %w", line, err)
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("journal: scan: %w", err)
	}
	return records, nil
}

// Read loads and decodes the journal blob name from store.
// The compression is inferred from the name's extension.
func Read(ctx context.Context, store blobstore.Store, name string, c codec.Codec) ([]Record, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("journal: get %s: %w", name, err)
	}
	return Decode(data, c, compressionFromName(name))
}

// List returns the names of all journals in store.
func List(ctx context.Context, store blobstore.Store) ([]string, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	return store.List(ctx, Prefix)
}
