// Package journal keeps an append-only audit trail of market actions in a
// write-ahead log. Run statistics stay in memory; the journal exists so
// spend and proceeds survive for offline inspection.
package journal

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	walSegmentThreshold = 1000
	walMaxSegments      = 100
	walDirPermissions   = 0o755
)

// Event kinds recorded in the journal.
const (
	KindPurchase = "purchase"
	KindSale     = "sale"
	KindListing  = "listing"
)

// Record is one journal entry.
type Record struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Time         time.Time `json:"time"`
	TradeID      int64     `json:"trade_id,omitempty"`
	ItemID       int64     `json:"item_id,omitempty"`
	DefinitionID int64     `json:"definition_id,omitempty"`
	Name         string    `json:"name,omitempty"`
	Price        int64     `json:"price,omitempty"`
	StartPrice   int64     `json:"start_price,omitempty"`
	Proceeds     int64     `json:"proceeds,omitempty"`
	Profit       int64     `json:"profit,omitempty"`
}

// Journal appends records to a WAL directory.
type Journal struct {
	wal *gowal.Wal
}

// Open creates or reopens a journal under dir.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, walDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to ensure journal directory %s", dir)
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "log_",
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open journal wal")
	}
	return &Journal{wal: wal}, nil
}

func (j *Journal) append(rec Record) error {
	rec.ID = uuid.New().String()
	rec.Time = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal journal record")
	}
	return j.wal.Write(j.wal.CurrentIndex()+1, rec.Kind, data)
}

// Purchase records a successful buy.
func (j *Journal) Purchase(tradeID, definitionID int64, name string, price int64) error {
	return j.append(Record{
		Kind:         KindPurchase,
		TradeID:      tradeID,
		DefinitionID: definitionID,
		Name:         name,
		Price:        price,
	})
}

// Sale records collected proceeds.
func (j *Journal) Sale(proceeds, runningProfit int64) error {
	return j.append(Record{
		Kind:     KindSale,
		Proceeds: proceeds,
		Profit:   runningProfit,
	})
}

// Listing records an item posted for sale.
func (j *Journal) Listing(itemID, startPrice, buyNowPrice int64) error {
	return j.append(Record{
		Kind:       KindListing,
		ItemID:     itemID,
		StartPrice: startPrice,
		Price:      buyNowPrice,
	})
}

// Records replays all journal entries in write order.
func (j *Journal) Records() ([]Record, error) {
	var out []Record
	for msg := range j.wal.Iterator() {
		var rec Record
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal journal record")
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close flushes and closes the underlying WAL.
func (j *Journal) Close() error {
	return j.wal.Close()
}
