package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"lum/contract"
	"lum/domain"
	"lum/errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IIncidentRepository interface {
	contract.IncidentSink
	List(serviceID string) ([]domain.Incident, error)
	Recent(serviceIDs []string) ([]domain.Incident, error)
}

var _ IIncidentRepository = IncidentRepository{}

// IncidentRepository is an append-only journal of watchdog triggers.
type IncidentRepository struct {
	db    *badger.DB
	log   *slog.Logger
	limit *int
}

func NewIncidentRepository(db *badger.DB, log *slog.Logger, limit *int) IncidentRepository {
	return IncidentRepository{db: db, log: log, limit: limit}
}

type DiskIncident struct {
	ID        uuid.UUID `cbor:"1,keyasint"`
	ServiceID string    `cbor:"2,keyasint"`
	TaskID    string    `cbor:"3,keyasint"`
	Cause     string    `cbor:"4,keyasint"`
	Reason    string    `cbor:"5,keyasint"`
	At        int64     `cbor:"6,keyasint"`
}

const keySeparator = ":"

// Record stores the incident under "incident:{service}:{unixnano}:{uuid}".
// The 19-digit padding keeps keys of one service in chronological order.
func (r IncidentRepository) Record(ctx context.Context, incident domain.Incident) error {
	prefix, err := servicePrefix(incident.ServiceID)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("%s%019d%s%s",
		prefix,
		incident.At.UnixNano(),
		keySeparator,
		incident.ID,
	)
	bytes, err := cbor.Marshal(fromIncident(incident))
	if err != nil {
		return fmt.Errorf("encoding incident %s: %w", incident.ID, err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List returns the incidents of a service, newest first, up to the
// configured limit.
func (r IncidentRepository) List(serviceID string) ([]domain.Incident, error) {
	var incidents []domain.Incident
	key, err := servicePrefix(serviceID)
	if err != nil {
		return nil, err
	}
	prefix := []byte(key)

	err = r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if r.limit != nil && len(incidents) >= *r.limit {
				break
			}
			var disk DiskIncident
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &disk)
			})
			if err != nil {
				r.log.Error("Skipping unreadable incident", "key", string(it.Item().Key()), "error", err)
				continue
			}
			incidents = append(incidents, toIncident(disk))
		}
		return nil
	})
	return incidents, err
}

// Recent lists the incidents of each service in turn, each one bounded by
// the configured limit.
func (r IncidentRepository) Recent(serviceIDs []string) ([]domain.Incident, error) {
	var incidents []domain.Incident
	for _, serviceID := range serviceIDs {
		fetched, err := r.List(serviceID)
		if err != nil {
			return nil, fmt.Errorf("listing incidents of %s: %w", serviceID, err)
		}
		incidents = append(incidents, fetched...)
	}
	return incidents, nil
}

// servicePrefix rejects IDs holding the separator, whose prefix would
// otherwise also match the keys of another service.
func servicePrefix(serviceID string) (string, error) {
	if serviceID == "" || strings.Contains(serviceID, keySeparator) {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidServiceID, serviceID)
	}
	return "incident" + keySeparator + serviceID + keySeparator, nil
}

func fromIncident(incident domain.Incident) DiskIncident {
	return DiskIncident{
		ID:        incident.ID,
		ServiceID: incident.ServiceID,
		TaskID:    incident.TaskID,
		Cause:     string(incident.Cause),
		Reason:    incident.Reason,
		At:        incident.At.UnixNano(),
	}
}

func toIncident(disk DiskIncident) domain.Incident {
	return domain.Incident{
		ID:        disk.ID,
		ServiceID: disk.ServiceID,
		TaskID:    disk.TaskID,
		Cause:     domain.Cause(disk.Cause),
		Reason:    disk.Reason,
		At:        time.Unix(0, disk.At).UTC(),
	}
}
