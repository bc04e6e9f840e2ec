// Package snapshot captures the business and client data an invoice was
// issued with and resolves the values every consumer should display.
package snapshot

import "invoicer/internal/domain"

// View is the resolved data for rendering or mailing an invoice.
type View struct {
	BillTo   domain.BillToSnapshot
	Business *domain.BusinessSnapshot
	Terms    string
	Notes    string
}

// Build copies the current client and business rows into a new snapshot.
func Build(client *domain.Client, settings *domain.BusinessSettings, terms, notes string) *domain.InvoiceMetadata {
	m := &domain.InvoiceMetadata{
		BillTo:   BillToFromClient(client),
		Business: BusinessFromSettings(settings),
	}
	if terms != "" {
		m.Terms = &terms
	}
	if notes != "" {
		m.Notes = &notes
	}
	return m
}

// BillToFromClient converts a client row into a recipient block.
func BillToFromClient(c *domain.Client) *domain.BillToSnapshot {
	if c == nil {
		return nil
	}
	b := &domain.BillToSnapshot{
		Name:       c.Name,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		Email:      c.TargetEmail,
	}
	if c.CCEmail != nil && *c.CCEmail != "" {
		cc := *c.CCEmail
		b.CCEmail = &cc
	}
	return b
}

// BusinessFromSettings converts the settings row into an issuer block.
func BusinessFromSettings(s *domain.BusinessSettings) *domain.BusinessSnapshot {
	if s == nil {
		return nil
	}
	return &domain.BusinessSnapshot{
		CompanyName:     s.CompanyName,
		OwnerName:       s.OwnerName,
		Address:         s.Address,
		City:            s.City,
		State:           s.State,
		PostalCode:      s.PostalCode,
		Country:         s.Country,
		Email:           s.Email,
		Phone:           s.Phone,
		BeneficiaryName: s.BeneficiaryName,
		BeneficiaryCNPJ: s.BeneficiaryCNPJ,
		SwiftCode:       s.SwiftCode,
		BankName:        s.BankName,
		BankAddress:     s.BankAddress,
		RoutingNumber:   s.RoutingNumber,
		AccountNumber:   s.AccountNumber,
		AccountType:     s.AccountType,
	}
}

// Resolve picks, block by block, the snapshot value when the invoice carries
// one and the live row otherwise.
func Resolve(inv *domain.Invoice, client *domain.Client, settings *domain.BusinessSettings) View {
	var v View
	var meta *domain.InvoiceMetadata
	if inv != nil {
		meta = inv.Metadata
	}

	switch {
	case meta != nil && meta.BillTo != nil:
		v.BillTo = *meta.BillTo
	case client != nil:
		v.BillTo = *BillToFromClient(client)
	}

	if meta != nil && meta.Business != nil {
		b := *meta.Business
		v.Business = &b
	} else {
		v.Business = BusinessFromSettings(settings)
	}

	switch {
	case meta != nil && meta.Terms != nil:
		v.Terms = *meta.Terms
	case inv != nil && inv.Terms != "":
		v.Terms = inv.Terms
	case client != nil:
		v.Terms = client.Terms
	}

	switch {
	case meta != nil && meta.Notes != nil:
		v.Notes = *meta.Notes
	case inv != nil:
		v.Notes = inv.Notes
	}
	return v
}

// CompanyName returns the issuer name or "" when no business data exists.
func (v View) CompanyName() string {
	if v.Business == nil {
		return ""
	}
	return v.Business.CompanyName
}

// BusinessEmail returns the issuer email or "".
func (v View) BusinessEmail() string {
	if v.Business == nil {
		return ""
	}
	return v.Business.Email
}
