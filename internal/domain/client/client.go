// Package client holds the client directory model: the roster of artists
// billed every month.
package client

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Category classifies a client's primary role.
type Category string

const (
	CategoryComposer      Category = "Composer"
	CategoryFilmComposer  Category = "Film Composer"
	CategoryLyricist      Category = "Lyricist"
	CategoryMusicDirector Category = "Music Director"
	CategorySinger        Category = "Singer"
	CategoryProducer      Category = "Producer"
	CategoryPublisher     Category = "Publisher"
	CategoryOther         Category = "Other"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryComposer, CategoryFilmComposer, CategoryLyricist, CategoryMusicDirector,
	CategorySinger, CategoryProducer, CategoryPublisher, CategoryOther,
}

// ParseCategory matches s case-insensitively. Blank maps to Other.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", errors.Newf(errors.ErrCodeClientInvalid, "unknown client category %q", s)
}

// BankDetails is the client's payout account.
type BankDetails struct {
	BankName      string `json:"bank_name,omitempty" yaml:"bank_name"`
	AccountNumber string `json:"account_number,omitempty" yaml:"account_number"`
	IFSC          string `json:"ifsc,omitempty" yaml:"ifsc"`
	Branch        string `json:"branch,omitempty" yaml:"branch"`
}

// Client is one billed artist.
type Client struct {
	ClientID string          `json:"client_id" yaml:"client_id"`
	Name     string          `json:"name" yaml:"name"`
	Category Category        `json:"category" yaml:"category"`
	Fee      decimal.Decimal `json:"fee" yaml:"fee"`
	IsActive bool            `json:"is_active" yaml:"is_active"`

	Email   string      `json:"email,omitempty" yaml:"email"`
	Phone   string      `json:"phone,omitempty" yaml:"phone"`
	Address string      `json:"address,omitempty" yaml:"address"`
	PAN     string      `json:"pan,omitempty" yaml:"pan"`
	GSTIN   string      `json:"gstin,omitempty" yaml:"gstin"`
	Bank    BankDetails `json:"bank_details" yaml:"bank_details"`

	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Validate checks identity, category and fee range.
func (c *Client) Validate() error {
	if c == nil {
		return errors.New(errors.ErrCodeClientInvalid, "client is nil")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return errors.New(errors.ErrCodeClientInvalid, "client id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.Newf(errors.ErrCodeClientInvalid, "client %s has no name", c.ClientID)
	}
	if _, err := ParseCategory(string(c.Category)); err != nil {
		return err
	}
	if c.Fee.IsNegative() || c.Fee.GreaterThan(decimal.NewFromInt(1)) {
		return errors.Newf(errors.ErrCodeFeeOutOfRange, "client %s fee %s outside [0,1]", c.ClientID, c.Fee.String())
	}
	return nil
}

// Normalize trims identity fields and fills the category default.
func (c *Client) Normalize() {
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.Name = strings.TrimSpace(c.Name)
	if cat, err := ParseCategory(string(c.Category)); err == nil {
		c.Category = cat
	}
}

// Directory is the read/write port onto the client roster.
type Directory interface {
	Get(ctx context.Context, clientID string) (*Client, error)
	List(ctx context.Context, activeOnly bool) ([]*Client, error)
	Save(ctx context.Context, c *Client) (*Client, error)
}

// NotFound builds the error returned for an unknown client id.
func NotFound(clientID string) error {
	return errors.Newf(errors.ErrCodeClientNotFound, "client %s not found", clientID)
}

//Personal.AI order the ending
