package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmarube/eventquote-api/internal/domain/enum"
	"github.com/kmarube/eventquote-api/pkg/money"
)

// DateIssuedFormat is the display format used for the issue date.
const DateIssuedFormat = "January 2, 2006"

// DefaultTaxRate is the tax percentage applied to new quotations.
const DefaultTaxRate = 18.0

// ValidityDays is how long a new quotation stays valid.
const ValidityDays = 30

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Quotation represents an itemized price quotation for an event client.
type Quotation struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"owner_id"`
	ClientName      string               `gorm:"size:255" json:"client_name"`
	CompanyName     string               `gorm:"size:255" json:"company_name"`
	Address         string               `gorm:"type:text" json:"address"`
	ContactNumber   string               `gorm:"size:50" json:"contact_number"`
	QuotationNumber string               `gorm:"size:100;index" json:"quotation_number"`
	DateIssued      string               `gorm:"size:100" json:"date_issued"`
	ValidUntil      time.Time            `gorm:"type:date" json:"valid_until"`
	TaxRate         float64              `gorm:"type:decimal(5,2);default:18" json:"tax_rate"`
	Discount        float64              `gorm:"type:decimal(15,2);default:0" json:"discount"`
	Status          enum.QuotationStatus `gorm:"default:0" json:"status"`
	Terms           string               `gorm:"type:text" json:"terms"`
	Notes           string               `gorm:"type:text" json:"notes"`
	Subtotal        float64              `gorm:"type:decimal(15,2);default:0" json:"subtotal"`
	TaxAmount       float64              `gorm:"type:decimal(15,2);default:0" json:"tax_amount"`
	GrandTotal      float64              `gorm:"type:decimal(15,2);default:0" json:"grand_total"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`

	Items []LineItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new quotation
func (q *Quotation) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Quotation model
func (Quotation) TableName() string {
	return "quotations"
}

// LineItem represents a priced row within a quotation. Amount is derived
// from Qty and UnitPrice and is never settable on its own.
type LineItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index" json:"quotation_id"`
	Requirement string    `gorm:"type:text" json:"requirement"`
	Qty         float64   `gorm:"type:decimal(15,2);default:0" json:"qty"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);default:0" json:"unit_price"`
	Remark      string    `gorm:"type:text" json:"remark"`
	Amount      float64   `gorm:"type:decimal(15,2);default:0" json:"amount"`
}

// BeforeCreate generates a UUID before creating a new line item
func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "line_items"
}

// NewLineItem returns a fresh empty line item.
func NewLineItem() LineItem {
	return LineItem{ID: uuid.New()}
}

// NextQuotationNumber builds the number for a new quotation from the
// current year and the highest sequence found among existing numbers.
// The sequence is taken from the trailing digit run of each existing
// number; numbers without one are ignored, and when none parse the
// sequence starts at 1.
func NextQuotationNumber(existing []Quotation, now time.Time) string {
	maxSeq := 0
	for _, q := range existing {
		m := trailingDigits.FindString(q.QuotationNumber)
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}
	return fmt.Sprintf("QT-%d-%04d", now.Year(), maxSeq+1)
}

// NewQuotation constructs an unpersisted quotation with default values
// and a number one past the highest sequence among existing quotations.
func NewQuotation(ownerID uuid.UUID, existing []Quotation, now time.Time) *Quotation {
	q := &Quotation{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		QuotationNumber: NextQuotationNumber(existing, now),
		DateIssued:      now.Format(DateIssuedFormat),
		ValidUntil:      now.AddDate(0, 0, ValidityDays),
		TaxRate:         DefaultTaxRate,
		Discount:        0,
		Status:          enum.QuotationStatusDraft,
		Terms:           "50% advance payment required to confirm the booking. Balance is due on the event date.",
		Notes:           "Thank you for considering us for your event.",
		Items:           []LineItem{NewLineItem()},
	}
	q.Recalculate()
	return q
}

// Pricing extracts the inputs the totals computation needs.
func (q *Quotation) Pricing() []money.LinePricing {
	pricing := make([]money.LinePricing, len(q.Items))
	for i, it := range q.Items {
		pricing[i] = money.LinePricing{Qty: it.Qty, UnitPrice: it.UnitPrice}
	}
	return pricing
}

// Totals derives the current financial state from items, tax rate and
// discount without touching the stored fields.
func (q *Quotation) Totals() money.Totals {
	return money.ComputeTotals(q.Pricing(), q.TaxRate, q.Discount)
}

// Recalculate overwrites the stored derived fields with a fresh
// computation. Callers must invoke this immediately before persisting
// so stale totals never reach the store.
func (q *Quotation) Recalculate() {
	for i := range q.Items {
		q.Items[i].Amount = money.LineAmount(q.Items[i].Qty, q.Items[i].UnitPrice)
	}
	totals := q.Totals()
	q.Subtotal = totals.Subtotal
	q.TaxAmount = totals.TaxAmount
	q.GrandTotal = totals.GrandTotal
}
