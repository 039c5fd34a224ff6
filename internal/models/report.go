package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Report kinds an admin can generate.
const (
	ReportUsers    = "users"
	ReportListings = "listings"
	ReportPayments = "payments"
	ReportMessages = "messages"
	ReportRatings  = "ratings"
)

// ReportParams are the filters a report was generated with.
type ReportParams struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Value implements driver.Valuer.
func (p ReportParams) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *ReportParams) Scan(src any) error {
	if src == nil {
		*p = ReportParams{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("report params: unsupported scan type %T", src)
	}
}

// Report records a generated admin report.
type Report struct {
	ID          int64        `db:"id" json:"id"`
	AdminID     int64        `db:"admin_id" json:"admin_id"`
	Kind        string       `db:"kind" json:"kind"`
	Params      ReportParams `db:"params" json:"params"`
	GeneratedAt time.Time    `db:"generated_at" json:"generated_at"`

	Admin *User `db:"-" json:"admin,omitempty"`
}
