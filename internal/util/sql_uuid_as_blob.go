package util

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UUIDAsBlob is stored as blob(16) but used as a uuid.UUID
type UUIDAsBlob uuid.UUID

func NewUUIDAsBlob() UUIDAsBlob {
	return UUIDAsBlob(uuid.New())
}

// ParseUUIDAsBlob parses the textual representation of an UUID.
func ParseUUIDAsBlob(str string) (UUIDAsBlob, error) {
	id, err := uuid.Parse(str)
	if err != nil {
		return UUIDAsBlob{}, ErrPublic(fmt.Sprintf("`%s` is not a valid ID", str))
	}

	return UUIDAsBlob(id), nil
}

func (t UUIDAsBlob) Value() (driver.Value, error) {
	buf := [16]byte(t)
	return driver.Value(buf[:]), nil
}

func (t UUIDAsBlob) UUID() uuid.UUID {
	return uuid.UUID(t)
}

func (t UUIDAsBlob) String() string {
	return t.UUID().String()
}

// Short returns the first block of the UUID, enough to tell matches apart in
// chat messages.
func (t UUIDAsBlob) Short() string {
	return t.String()[:8]
}

func (t UUIDAsBlob) IsZero() bool {
	return [16]byte(t) == [16]byte{}
}

func (t *UUIDAsBlob) Scan(src interface{}) error {
	slice, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", src)
	}
	if len(slice) != 16 {
		return fmt.Errorf("expected 16 bytes, got %d", len(slice))
	}

	var buf [16]byte

	copy(buf[:], slice)
	*t = UUIDAsBlob(buf)

	return nil
}

func (t UUIDAsBlob) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UUID())
}

// UUIDsAsBlobs converts a list of UUIDs for use as query arguments.
func UUIDsAsBlobs(ids []uuid.UUID) []UUIDAsBlob {
	ret := make([]UUIDAsBlob, len(ids))
	for k := range ids {
		ret[k] = UUIDAsBlob(ids[k])
	}

	return ret
}

type NullUUIDAsBlob struct {
	UUID  UUIDAsBlob
	Valid bool // Valid is true if UUIDAsBlob is not NULL
}

func NewNullUUIDAsBlob(id UUIDAsBlob) NullUUIDAsBlob {
	return NullUUIDAsBlob{UUID: id, Valid: !id.IsZero()}
}

// Scan implements the Scanner interface.
func (ns *NullUUIDAsBlob) Scan(value interface{}) error {
	if value == nil {
		ns.UUID, ns.Valid = UUIDAsBlob{}, false
		return nil
	}

	ns.Valid = true

	return ns.UUID.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullUUIDAsBlob) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}

	return ns.UUID.Value()
}

func (ns NullUUIDAsBlob) MarshalJSON() ([]byte, error) {
	if !ns.Valid {
		return json.Marshal(nil)
	}

	return json.Marshal(ns.UUID.UUID())
}
