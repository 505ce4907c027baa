package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

func TestCheckoutState_Transitions(t *testing.T) {
	assert.True(t, CheckoutIdle.CanTransitionTo(CheckoutAwaitingProviderApproval))
	assert.True(t, CheckoutAwaitingProviderApproval.CanTransitionTo(CheckoutCapturing))
	assert.True(t, CheckoutCapturing.CanTransitionTo(CheckoutRecorded))
	assert.True(t, CheckoutCapturing.CanTransitionTo(CheckoutFailed))

	assert.False(t, CheckoutIdle.CanTransitionTo(CheckoutRecorded))
	assert.False(t, CheckoutAwaitingProviderApproval.CanTransitionTo(CheckoutRecorded))
	assert.False(t, CheckoutRecorded.CanTransitionTo(CheckoutCapturing))
	assert.False(t, CheckoutFailed.CanTransitionTo(CheckoutCapturing))
}

func TestCheckout_CapturedCannotFail(t *testing.T) {
	co := Checkout{State: CheckoutCapturing}
	assert.True(t, co.CanMoveTo(CheckoutFailed))

	co.Captured = true
	assert.False(t, co.CanMoveTo(CheckoutFailed))
	assert.True(t, co.CanMoveTo(CheckoutRecorded))
}

func TestDeductPurchased(t *testing.T) {
	cart := []CartLine{{ProductID: 1, Quantity: 3}, {ProductID: 2, Quantity: 1}, {ProductID: 3, Quantity: 1}}
	bought := []OrderLine{{ProductID: 1, Quantity: 2, Price: 10}, {ProductID: 2, Quantity: 1, Price: 5}, {ProductID: 9, Quantity: 1}}

	assert.Equal(t, []CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 3, Quantity: 1}}, DeductPurchased(cart, bought))
	assert.Empty(t, DeductPurchased(nil, bought))
}

func TestNextProductID(t *testing.T) {
	assert.Equal(t, 1, NextProductID(nil))
	assert.Equal(t, 3, NextProductID([]Product{{ID: 1}, {ID: 2}}))
	assert.Equal(t, 11, NextProductID([]Product{{ID: 10}, {ID: 2}}))
}

func TestNewProduct_Defaults(t *testing.T) {
	p := NewProduct(4, Product{}, fixedNow)

	assert.Equal(t, 4, p.ID)
	assert.Equal(t, DefaultProductName, p.Name)
	assert.Equal(t, DefaultProductBrand, p.Brand)
	assert.Equal(t, DefaultProductCategory, p.Category)
	assert.Zero(t, p.Price)
	assert.Zero(t, p.Stock)
	assert.Equal(t, []string{}, p.Images)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, []Review{}, p.Reviews)
	assert.True(t, p.ReleasedAt.Equal(fixedNow))
}

func TestAverageRating(t *testing.T) {
	p := Product{}
	assert.Zero(t, p.AverageRating())

	p.Reviews = []Review{{UserID: 1, Rating: 5}, {UserID: 2, Rating: 4}, {UserID: 3, Rating: 3}}
	assert.Equal(t, 4.0, p.AverageRating())
	assert.True(t, p.ReviewedBy(2))
	assert.False(t, p.ReviewedBy(9))
}

func TestFindUserByEmail_CaseInsensitive(t *testing.T) {
	users := []User{{ID: 1, Email: "ana@mail.com"}, {ID: 2, Email: "Luis@Mail.com"}}

	assert.Equal(t, 1, FindUserByEmail(users, "LUIS@mail.com "))
	assert.Equal(t, -1, FindUserByEmail(users, "ghost@mail.com"))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(RoleAdmin))
	assert.True(t, IsAdmin("admin"))
	assert.False(t, IsAdmin(RoleUser))
}

func TestDate_DecodesCalendarDateAndTimestamp(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"fechaLanzamiento":"2024-03-15"}`), &p))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), p.ReleasedAt.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"fechaLanzamiento":"2024-11-15T14:00:00.000Z"}`), &p))
	assert.Equal(t, 14, p.ReleasedAt.Hour())

	var bad Product
	assert.Error(t, json.Unmarshal([]byte(`{"fechaLanzamiento":"yesterday"}`), &bad))
}

func TestProduct_JSONRoundTrip(t *testing.T) {
	comment := "Muy bueno"
	in := Product{
		ID: 1, Name: "Teclado Mecánico", Brand: "Logi", Category: "perifericos",
		Price: 75, Stock: 3, Images: []string{"a.jpg"}, Description: "RGB",
		Reviews:    []Review{{UserID: 2, Rating: 5, Comment: &comment}, {UserID: 3, Rating: 4}},
		ReleasedAt: NewDate(fixedNow),
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"comentario":null`)

	var out Product
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestFormatLongDate(t *testing.T) {
	assert.Equal(t, "1 de diciembre de 2024", FormatLongDate(fixedNow))
	assert.Equal(t, "15 de noviembre de 2024", FormatLongDate(time.Date(2024, 11, 15, 14, 0, 0, 0, time.UTC)))
}

func TestSkipError(t *testing.T) {
	err := Skip("cart.add", SkipNoToken)

	assert.ErrorIs(t, err, ErrSkipped)
	assert.Equal(t, SkipNoToken, SkipReasonOf(err))
	assert.Equal(t, SkipReason(""), SkipReasonOf(ErrProductNotFound))
}
