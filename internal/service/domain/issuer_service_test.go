package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessera-live/tessera/internal/model"
	"github.com/tessera-live/tessera/internal/service"
)

func validIssueRequest() IssueRequest {
	return IssueRequest{
		EventID:       1,
		Items:         []LineItem{{TicketTypeID: 1, Quantity: 2}},
		Buyer:         Buyer{Name: "Ada", Email: "ada@example.com"},
		Source:        model.OrderSourceCheckout,
		PaymentMethod: "card",
	}
}

func TestPreValidateAggregatesDuplicateLineItems(t *testing.T) {
	s := &issuerService{}
	req := validIssueRequest()
	req.Items = []LineItem{
		{TicketTypeID: 5, Quantity: 2},
		{TicketTypeID: 5, Quantity: 3},
		{TicketTypeID: 9, Quantity: 1},
	}

	quantities, err := s.preValidate(req)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{5: 5, 9: 1}, quantities)
}

func TestPreValidateRejectsBadInput(t *testing.T) {
	s := &issuerService{}

	tests := []struct {
		name   string
		mutate func(*IssueRequest)
		field  string
	}{
		{"no items", func(r *IssueRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *IssueRequest) { r.Items[0].Quantity = 0 }, "quantity"},
		{"negative quantity", func(r *IssueRequest) { r.Items[0].Quantity = -1 }, "quantity"},
		{"missing buyer", func(r *IssueRequest) { r.Buyer = Buyer{} }, "buyer"},
		{"unknown source", func(r *IssueRequest) { r.Source = "phone" }, "source"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validIssueRequest()
			tc.mutate(&req)

			_, err := s.preValidate(req)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}
