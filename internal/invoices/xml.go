package invoices

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
)

// nfeDocument mirrors the subset of an electronic invoice (NF-e) XML that we
// extract. Everything else in the document is ignored.
type nfeDocument struct {
	XMLName xml.Name `xml:"nfeProc"`
	InfNFe  struct {
		ID  string `xml:"Id,attr"`
		Ide struct {
			Number string `xml:"nNF"`
			Issued string `xml:"dhEmi"`
		} `xml:"ide"`
		Emit struct {
			Name string `xml:"xNome"`
		} `xml:"emit"`
		Total struct {
			Value float64 `xml:"ICMSTot>vNF"`
		} `xml:"total"`
	} `xml:"NFe>infNFe"`
}

// ParseNFe extracts invoice fields from an NF-e XML payload. The 44-digit
// access key is the infNFe Id attribute without its "NFe" prefix.
func ParseNFe(payload []byte) (UpsertInvoiceRequest, error) {
	var doc nfeDocument
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return UpsertInvoiceRequest{}, fmt.Errorf("%w: invalid invoice xml: %v", httpx.ErrValidation, err)
	}

	key := strings.TrimPrefix(doc.InfNFe.ID, "NFe")
	if len(key) != 44 {
		return UpsertInvoiceRequest{}, fmt.Errorf("%w: access key must have 44 digits, got %d", httpx.ErrValidation, len(key))
	}
	if doc.InfNFe.Ide.Number == "" {
		return UpsertInvoiceRequest{}, fmt.Errorf("%w: invoice number missing", httpx.ErrValidation)
	}
	if doc.InfNFe.Emit.Name == "" {
		return UpsertInvoiceRequest{}, fmt.Errorf("%w: supplier name missing", httpx.ErrValidation)
	}

	issued, err := time.Parse(time.RFC3339, doc.InfNFe.Ide.Issued)
	if err != nil {
		return UpsertInvoiceRequest{}, fmt.Errorf("%w: invalid issue date %q", httpx.ErrValidation, doc.InfNFe.Ide.Issued)
	}

	return UpsertInvoiceRequest{
		Number:    doc.InfNFe.Ide.Number,
		Supplier:  doc.InfNFe.Emit.Name,
		IssueDate: issued,
		Total:     doc.InfNFe.Total.Value,
		AccessKey: &key,
	}, nil
}
