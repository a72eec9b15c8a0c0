package accounting

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Links and Meta are the pagination blocks of every list response.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type Meta struct {
	CurrentPage int64  `json:"current_page"`
	From        int64  `json:"from"`
	LastPage    int64  `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int64  `json:"per_page"`
	To          int64  `json:"to"`
	Total       int64  `json:"total"`
}

// ID is a remote identifier, sent as a number by most endpoints and as a string by some.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*id = ID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Company struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Currency  string `json:"currency"`
	Domain    string `json:"domain"`
	Address   string `json:"address"`
	Logo      string `json:"logo"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CompanyList struct {
	Data  []Company `json:"data"`
	Links Links     `json:"links"`
	Meta  Meta      `json:"meta"`
}

type Item struct {
	ID                     ID      `json:"id"`
	CompanyID              ID      `json:"company_id"`
	Type                   string  `json:"type"`
	Name                   string  `json:"name"`
	Description            string  `json:"description"`
	SalePrice              float64 `json:"sale_price"`
	SalePriceFormatted     string  `json:"sale_price_formatted"`
	PurchasePrice          float64 `json:"purchase_price"`
	PurchasePriceFormatted string  `json:"purchase_price_formatted"`
	CategoryID             ID      `json:"category_id"`
	Enabled                bool    `json:"enabled"`
	CreatedAt              string  `json:"created_at"`
	UpdatedAt              string  `json:"updated_at"`
}

type ItemEnvelope struct {
	Data Item `json:"data"`
}

type ItemList struct {
	Data  []Item `json:"data"`
	Links Links  `json:"links"`
	Meta  Meta   `json:"meta"`
}

type Invoice struct {
	ID              ID      `json:"id"`
	CompanyID       ID      `json:"company_id"`
	Type            string  `json:"type"`
	DocumentNumber  string  `json:"document_number"`
	OrderNumber     string  `json:"order_number"`
	Status          string  `json:"status"`
	IssuedAt        string  `json:"issued_at"`
	DueAt           string  `json:"due_at"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
	CurrencyCode    string  `json:"currency_code"`
	ContactID       *int64  `json:"contact_id"`
	ContactName     string  `json:"contact_name"`
	ContactAddress  string  `json:"contact_address"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type InvoiceList struct {
	Data  []Invoice `json:"data"`
	Links Links     `json:"links"`
	Meta  Meta      `json:"meta"`
}

// ForContact keeps the invoices billed to one customer.
func (l InvoiceList) ForContact(contactID string) []Invoice {
	out := []Invoice{}
	for _, inv := range l.Data {
		if inv.ContactID != nil && strconv.FormatInt(*inv.ContactID, 10) == contactID {
			out = append(out, inv)
		}
	}
	return out
}

type Customer struct {
	ID           ID     `json:"id"`
	CompanyID    ID     `json:"company_id"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Website      string `json:"website"`
	CurrencyCode string `json:"currency_code"`
	Enabled      bool   `json:"enabled"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type CustomerEnvelope struct {
	Data Customer `json:"data"`
}

type CustomerList struct {
	Data  []Customer `json:"data"`
	Links Links      `json:"links"`
	Meta  Meta       `json:"meta"`
}

type Role struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type User struct {
	ID           ID          `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Locale       string      `json:"locale"`
	LandingPage  string      `json:"landing_page"`
	Enabled      bool        `json:"enabled"`
	LastLoggedIn string      `json:"last_logged_in_at"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
	Companies    CompanyRefs `json:"companies"`
	Roles        RoleRefs    `json:"roles"`
}

type CompanyRefs struct {
	Data []Company `json:"data"`
}

type RoleRefs struct {
	Data []Role `json:"data"`
}

type UserList struct {
	Data  []User `json:"data"`
	Links Links  `json:"links"`
	Meta  Meta   `json:"meta"`
}
