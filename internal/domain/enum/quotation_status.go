package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// QuotationStatus represents the status of a quotation. Draft, Pending
// and Accepted form the intended forward path, but no transition table
// is enforced; any status may be set directly.
type QuotationStatus int

const (
	QuotationStatusDraft    QuotationStatus = 0
	QuotationStatusPending  QuotationStatus = 1
	QuotationStatusAccepted QuotationStatus = 2
)

func (s QuotationStatus) String() string {
	switch s {
	case QuotationStatusPending:
		return "Pending"
	case QuotationStatusAccepted:
		return "Accepted"
	default:
		return "Draft"
	}
}

// ParseQuotationStatus maps a status label to its enum value. Unknown
// labels fall back to Draft.
func ParseQuotationStatus(s string) QuotationStatus {
	switch s {
	case "Pending":
		return QuotationStatusPending
	case "Accepted":
		return QuotationStatusAccepted
	default:
		return QuotationStatusDraft
	}
}

func (s QuotationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *QuotationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = QuotationStatus(i)
		return nil
	}
	*s = ParseQuotationStatus(str)
	return nil
}

func (s QuotationStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *QuotationStatus) Scan(value interface{}) error {
	if value == nil {
		*s = QuotationStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = QuotationStatus(v)
	case int:
		*s = QuotationStatus(v)
	}
	return nil
}
