package services

import (
	"context"
	"fmt"

	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/money"
	"github.com/diewo77/gestion/internal/words"
)

// PrintDateLayout renders issue dates as "05 / 03 / 2024".
const PrintDateLayout = "02 / 01 / 2006"

type PrintLine struct {
	Designation string `json:"designation"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type PrintCompany struct {
	Name     string `json:"name"`
	TaxID    string `json:"tax_id,omitempty"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	BankName string `json:"bank_name,omitempty"`
	RIB      string `json:"rib,omitempty"`
	Footer   string `json:"footer,omitempty"`
}

// PrintPayload is everything an external renderer needs, already formatted.
type PrintPayload struct {
	Title         string       `json:"title"`
	Number        string       `json:"number"`
	Date          string       `json:"date"`
	ClientName    string       `json:"client_name"`
	ClientTel     string       `json:"client_tel,omitempty"`
	ClientEmail   string       `json:"client_email,omitempty"`
	ClientAddress string       `json:"client_address,omitempty"`
	Lines         []PrintLine  `json:"lines"`
	Subtotal      string       `json:"subtotal"`
	StampDuty     string       `json:"stamp_duty"`
	Total         string       `json:"total"`
	AmountInWords string       `json:"amount_in_words"`
	WordsCaption  string       `json:"words_caption"`
	Company       PrintCompany `json:"company"`
}

// Field is one labelled value of the flattened payload.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BuildPayload formats doc for printing. Stored totals are printed as they
// are; if they disagree with the items an IntegrityError is returned.
func BuildPayload(doc *models.Document, company models.CompanyProfile) (*PrintPayload, error) {
	if reason := checkDocument(doc); reason != "" {
		return nil, &IntegrityError{Entity: "document", ID: doc.ID, Detail: reason}
	}

	caption := "Arrêtée la présente facture à la somme de"
	if doc.Kind == models.KindQuote {
		caption = "Arrêté le présent devis à la somme de"
	}

	p := &PrintPayload{
		Title:         doc.Kind.Title(),
		Number:        doc.Number,
		Date:          doc.IssueDate.UTC().Format(PrintDateLayout),
		ClientName:    doc.ClientName,
		ClientTel:     doc.ClientTel,
		ClientEmail:   doc.ClientEmail,
		ClientAddress: doc.ClientAddress,
		Lines:         make([]PrintLine, 0, len(doc.Items)),
		Subtotal:      money.FormatFR(doc.Subtotal),
		StampDuty:     money.FormatFR(doc.StampDuty),
		Total:         money.FormatFR(doc.Total),
		AmountInWords: words.Amount(doc.Total),
		WordsCaption:  caption,
		Company: PrintCompany{
			Name:     company.Name,
			TaxID:    company.TaxID,
			Address:  company.Address,
			Phone:    company.Phone,
			Email:    company.Email,
			BankName: company.BankName,
			RIB:      company.RIB,
			Footer:   company.Footer,
		},
	}
	for _, it := range doc.Items {
		p.Lines = append(p.Lines, PrintLine{
			Designation: it.Designation,
			Quantity:    money.FormatFR(it.Quantity),
			UnitPrice:   money.FormatFR(it.UnitPrice),
			LineTotal:   money.FormatFR(it.LineTotal),
		})
	}
	return p, nil
}

// Fields flattens the payload in print order. Empty optional values are
// left out.
func (p *PrintPayload) Fields() []Field {
	var out []Field
	add := func(label, value string) { out = append(out, Field{Label: label, Value: value}) }
	opt := func(label, value string) {
		if value != "" {
			add(label, value)
		}
	}

	add("Société", p.Company.Name)
	opt("Matricule fiscal", p.Company.TaxID)
	opt("Adresse société", p.Company.Address)
	opt("Téléphone société", p.Company.Phone)
	opt("Email société", p.Company.Email)

	add("Document", p.Title)
	add("Numéro", p.Number)
	add("Date", p.Date)

	add("Client", p.ClientName)
	opt("Tél", p.ClientTel)
	opt("Email", p.ClientEmail)
	opt("Adresse", p.ClientAddress)

	for i, l := range p.Lines {
		n := i + 1
		add(fmt.Sprintf("Ligne %d désignation", n), l.Designation)
		add(fmt.Sprintf("Ligne %d quantité", n), l.Quantity)
		add(fmt.Sprintf("Ligne %d prix unitaire", n), l.UnitPrice)
		add(fmt.Sprintf("Ligne %d total", n), l.LineTotal)
	}

	add("Sous-total", p.Subtotal)
	add("Droit de timbre", p.StampDuty)
	add("Total", p.Total)
	add(p.WordsCaption, p.AmountInWords)

	opt("Banque", p.Company.BankName)
	opt("RIB", p.Company.RIB)
	opt("Pied de page", p.Company.Footer)
	return out
}

// PrintService assembles payloads from stored documents.
type PrintService struct {
	documents *DocumentService
	company   *CompanyService
}

func NewPrintService(documents *DocumentService, company *CompanyService) *PrintService {
	return &PrintService{documents: documents, company: company}
}

func (s *PrintService) Build(ctx context.Context, documentID uint) (*PrintPayload, error) {
	doc, err := s.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	profile, err := s.company.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return BuildPayload(doc, profile)
}
