package checkout

import "strings"

// Metadata keys attached to payment intents. They are the only state shared
// between intent issuance and settlement.
const (
	MetaProductID    = "productId"
	MetaProductName  = "productName"
	MetaBuyerEmail   = "buyerEmail"
	MetaBuyerName    = "buyerName"
	MetaBuyerAddress = "buyerAddress"
	MetaBuyerCity    = "buyerCity"
	MetaBuyerState   = "buyerState"
	MetaBuyerZipCode = "buyerZipCode"
)

// BuyerInfo is the anonymous buyer's contact and shipping data.
type BuyerInfo struct {
	FullName      string `json:"fullName" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,max=200"`
	StreetAddress string `json:"streetAddress" validate:"max=300"`
	City          string `json:"city" validate:"max=100"`
	State         string `json:"state" validate:"max=100"`
	ZipCode       string `json:"zipCode" validate:"max=20"`
}

func (b *BuyerInfo) normalize() {
	b.FullName = strings.TrimSpace(b.FullName)
	b.Email = strings.TrimSpace(b.Email)
	b.StreetAddress = strings.TrimSpace(b.StreetAddress)
	b.City = strings.TrimSpace(b.City)
	b.State = strings.TrimSpace(b.State)
	b.ZipCode = strings.TrimSpace(b.ZipCode)
}

// PurchaseRequest is the buyer's request to pay for one product. It carries
// no price: the charge is always computed from the catalog.
type PurchaseRequest struct {
	ProductID string     `json:"productId" validate:"required,max=64"`
	BuyerInfo *BuyerInfo `json:"buyerInfo" validate:"required"`
}

func intentMetadata(productID, productName string, buyer *BuyerInfo) map[string]string {
	return map[string]string{
		MetaProductID:    productID,
		MetaProductName:  productName,
		MetaBuyerEmail:   buyer.Email,
		MetaBuyerName:    buyer.FullName,
		MetaBuyerAddress: buyer.StreetAddress,
		MetaBuyerCity:    buyer.City,
		MetaBuyerState:   buyer.State,
		MetaBuyerZipCode: buyer.ZipCode,
	}
}

// composeAddress joins the address parts present in the metadata into one
// line, e.g. "Rua A 1, São Paulo, SP, 01000-000".
func composeAddress(meta map[string]string) string {
	parts := make([]string, 0, 4)
	for _, key := range []string{MetaBuyerAddress, MetaBuyerCity, MetaBuyerState, MetaBuyerZipCode} {
		if v := strings.TrimSpace(meta[key]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
