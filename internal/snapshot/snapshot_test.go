package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/domain"
	"invoicer/internal/snapshot"
)

func liveClient() *domain.Client {
	cc := "billing@acme.test"
	return &domain.Client{
		Name:        "Acme Corp",
		Address:     "1 Main St",
		City:        "Springfield",
		State:       "IL",
		PostalCode:  "62701",
		Country:     "USA",
		TargetEmail: "ap@acme.test",
		CCEmail:     &cc,
		Terms:       "Net 30",
	}
}

func liveSettings(name string) *domain.BusinessSettings {
	return &domain.BusinessSettings{
		CompanyName:     name,
		Email:           "me@studio.test",
		BeneficiaryName: "Jane Doe",
		SwiftCode:       "ABCDUS33",
	}
}

func TestBuild_CopiesRows(t *testing.T) {
	meta := snapshot.Build(liveClient(), liveSettings("Snapshot Co"), "Net 15", "")

	require.NotNil(t, meta.BillTo)
	assert.Equal(t, "Acme Corp", meta.BillTo.Name)
	assert.Equal(t, "ap@acme.test", meta.BillTo.Email)
	require.NotNil(t, meta.BillTo.CCEmail)
	assert.Equal(t, "billing@acme.test", *meta.BillTo.CCEmail)
	require.NotNil(t, meta.Business)
	assert.Equal(t, "Snapshot Co", meta.Business.CompanyName)
	require.NotNil(t, meta.Terms)
	assert.Equal(t, "Net 15", *meta.Terms)
	assert.Nil(t, meta.Notes)
}

func TestBuild_NilRows(t *testing.T) {
	meta := snapshot.Build(nil, nil, "", "")

	assert.Nil(t, meta.BillTo)
	assert.Nil(t, meta.Business)
}

func TestResolve_PrefersSnapshot(t *testing.T) {
	inv := &domain.Invoice{
		Metadata: snapshot.Build(liveClient(), liveSettings("Snapshot Co"), "Net 15", "paid via wire"),
		Terms:    "changed terms",
	}
	client := liveClient()
	client.Name = "Acme Renamed"

	v := snapshot.Resolve(inv, client, liveSettings("Renamed Co"))

	assert.Equal(t, "Snapshot Co", v.CompanyName())
	assert.Equal(t, "Acme Corp", v.BillTo.Name)
	assert.Equal(t, "Net 15", v.Terms)
	assert.Equal(t, "paid via wire", v.Notes)
}

func TestResolve_FallsBackToLive(t *testing.T) {
	inv := &domain.Invoice{Notes: "thanks"}

	v := snapshot.Resolve(inv, liveClient(), liveSettings("Live Co"))

	assert.Equal(t, "Live Co", v.CompanyName())
	assert.Equal(t, "me@studio.test", v.BusinessEmail())
	assert.Equal(t, "Acme Corp", v.BillTo.Name)
	assert.Equal(t, "Net 30", v.Terms)
	assert.Equal(t, "thanks", v.Notes)
}

func TestResolve_PartialSnapshot(t *testing.T) {
	inv := &domain.Invoice{
		Metadata: &domain.InvoiceMetadata{
			BillTo: &domain.BillToSnapshot{Name: "Frozen Client"},
		},
	}

	v := snapshot.Resolve(inv, liveClient(), liveSettings("Live Co"))

	assert.Equal(t, "Frozen Client", v.BillTo.Name)
	assert.Empty(t, v.BillTo.Address)
	assert.Equal(t, "Live Co", v.CompanyName())
}

func TestResolve_NothingAvailable(t *testing.T) {
	v := snapshot.Resolve(&domain.Invoice{}, nil, nil)

	assert.Nil(t, v.Business)
	assert.Empty(t, v.CompanyName())
	assert.Empty(t, v.BusinessEmail())
	assert.Empty(t, v.BillTo.Name)
}
