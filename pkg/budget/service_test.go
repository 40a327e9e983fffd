package budget

import (
	"context"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/event_bus"
	"github.com/crewdeck/crewdeck/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var budgetRepoStub = NewStubRepository()
var mockClock = &utils.MockClock{FixedNow: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}

var service Service

func setup(t *testing.T) func() {
	service = NewService(budgetRepoStub, event_bus.NewEventBus(), mockClock)
	return func() {
		t.Log("Teardown after test")
		budgetRepoStub.Cleanup()
	}
}

func newItem(name string, cost float64) BudgetItem {
	return BudgetItem{
		Name:      name,
		Type:      ItemTypeProp,
		Cost:      cost,
		Quantity:  1,
		ProjectId: "lantern",
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should compute the total and split it across the selected payers", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		item := newItem("Paper lanterns", 100)
		item.Quantity = 3
		item.OtherFee = 25

		// when
		created, err := service.Create(ctx, item, []string{"Mika", "Ella"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 325.0, created.Total)
		require.Len(t, created.Payers, 2)
		assert.Equal(t, 162.5, created.Payers[0].AmountToPay)
		assert.Equal(t, PaymentStatusDue, created.Payers[0].Status)
	})

	t.Run("should create an item without payers when nobody is selected", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, newItem("Glue", 20), nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, 20.0, created.Total)
		assert.Empty(t, created.Payers)
	})

	t.Run("should default the type and reject a missing name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		item := newItem("Tape", 10)
		item.Type = ""

		// when
		created, err := service.Create(ctx, item, nil)
		require.NoError(t, err)
		assert.Equal(t, ItemTypeProp, created.Type)

		_, err = service.Create(ctx, newItem("  ", 10), nil)
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("should reject invalid quantity and negative amounts", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		item := newItem("Paint", 10)
		item.Quantity = 0
		_, err := service.Create(ctx, item, nil)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		item = newItem("Paint", -5)
		_, err = service.Create(ctx, item, nil)
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("should zero the labor fee when the flag is off", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		item := newItem("Costume", 100)
		item.LaborFee = 50

		created, err := service.Create(ctx, item, nil)

		require.NoError(t, err)
		assert.Equal(t, 0.0, created.LaborFee)
		assert.Equal(t, 100.0, created.Total)
	})
}

func TestServiceImpl_Update(t *testing.T) {
	t.Run("should recompute the total and every payer's share", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Fabric", 100), []string{"Mika", "Ella"})
		require.NoError(t, err)

		// when
		created.Cost = 200
		updated, err := service.Update(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, 200.0, updated.Total)
		require.Len(t, updated.Payers, 2)
		assert.Equal(t, 100.0, updated.Payers[0].AmountToPay)
	})

	t.Run("should keep paid amounts and re-derive statuses on resplit", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Fabric", 100), []string{"Mika", "Ella"})
		require.NoError(t, err)
		paid := 50.0
		_, err = service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{AmountPaid: &paid})
		require.NoError(t, err)

		// when: total doubles, the fully paid share becomes partial
		created.Cost = 200
		updated, err := service.Update(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, 50.0, updated.Payers[0].AmountPaid)
		assert.Equal(t, PaymentStatusDelayed, updated.Payers[0].Status)
	})

	t.Run("should not touch payers when the total is unchanged", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Fabric", 100), []string{"Mika"})
		require.NoError(t, err)
		paid := 100.0
		withPayment, err := service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{AmountPaid: &paid})
		require.NoError(t, err)

		// when: only the link changes
		withPayment.Link = "https://example.com/fabric"
		updated, err := service.Update(ctx, withPayment)

		// then
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPaid, updated.Payers[0].Status)
		assert.Equal(t, 100.0, updated.Payers[0].AmountPaid)
	})

	t.Run("should return not found for an unknown item", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		item := newItem("Ghost", 10)
		item.Id = "missing"
		_, err := service.Update(ctx, item)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestServiceImpl_Payers(t *testing.T) {
	t.Run("should add a payer and shrink the shares", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Lights", 300), []string{"Mika", "Ella"})
		require.NoError(t, err)

		// when
		updated, err := service.AddPayer(ctx, created.Id, "Joan")

		// then
		require.NoError(t, err)
		require.Len(t, updated.Payers, 3)
		assert.Equal(t, 100.0, updated.Payers[0].AmountToPay)
	})

	t.Run("should reject adding an existing or blank payer", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, newItem("Lights", 300), []string{"Mika"})
		require.NoError(t, err)

		_, err = service.AddPayer(ctx, created.Id, "Mika")
		assert.ErrorIs(t, err, ErrPayerExists)

		_, err = service.AddPayer(ctx, created.Id, "  ")
		assert.ErrorIs(t, err, ErrPayerNameRequired)
	})

	t.Run("should remove a payer and redistribute the total", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Lights", 325), []string{"Mika", "Ella", "Joan"})
		require.NoError(t, err)

		// when
		updated, err := service.RemovePayer(ctx, created.Id, "Joan")

		// then
		require.NoError(t, err)
		require.Len(t, updated.Payers, 2)
		assert.Equal(t, 162.5, updated.Payers[0].AmountToPay)
	})

	t.Run("should return not found when removing an unknown payer", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, newItem("Lights", 300), []string{"Mika"})
		require.NoError(t, err)

		_, err = service.RemovePayer(ctx, created.Id, "Nobody")
		assert.ErrorIs(t, err, ErrPayerNotFound)
	})

	t.Run("should replace the whole roster with a fresh split", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Lights", 300), []string{"Mika"})
		require.NoError(t, err)
		paid := 300.0
		_, err = service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{AmountPaid: &paid})
		require.NoError(t, err)

		// when
		updated, err := service.SetPayers(ctx, created.Id, []string{"Ella", "Joan", "Paolo"})

		// then: payments are discarded, everyone starts due
		require.NoError(t, err)
		require.Len(t, updated.Payers, 3)
		for _, p := range updated.Payers {
			assert.Equal(t, 100.0, p.AmountToPay)
			assert.Equal(t, 0.0, p.AmountPaid)
			assert.Equal(t, PaymentStatusDue, p.Status)
		}
	})
}

func TestServiceImpl_UpdatePayer(t *testing.T) {
	t.Run("should derive the status from an edited paid amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Props", 200), []string{"Mika", "Ella"})
		require.NoError(t, err)

		// when
		paid := 40.0
		updated, err := service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{AmountPaid: &paid})

		// then
		require.NoError(t, err)
		assert.Equal(t, 40.0, updated.Payers[0].AmountPaid)
		assert.Equal(t, PaymentStatusDelayed, updated.Payers[0].Status)
		assert.False(t, updated.Payers[0].ManualStatus)
		assert.Equal(t, mockClock.Now(), updated.Payers[0].LastUpdated)
	})

	t.Run("should keep a manual status until the paid amount is edited again", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Props", 200), []string{"Mika", "Ella"})
		require.NoError(t, err)
		manual := PaymentStatusPaid
		_, err = service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{Status: &manual})
		require.NoError(t, err)

		// when: a resplit happens, the manual status survives
		created.Cost = 400
		updated, err := service.Update(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPaid, updated.Payers[0].Status)
		assert.True(t, updated.Payers[0].ManualStatus)

		// when: the paid amount is edited, the override clears
		paid := 10.0
		updated, err = service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{AmountPaid: &paid})

		// then
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusDelayed, updated.Payers[0].Status)
		assert.False(t, updated.Payers[0].ManualStatus)
	})

	t.Run("should change the payment type without touching the status", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Props", 200), []string{"Mika"})
		require.NoError(t, err)

		// when
		cash := PaymentTypeCash
		updated, err := service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{PaymentType: &cash})

		// then
		require.NoError(t, err)
		assert.Equal(t, PaymentTypeCash, updated.Payers[0].PaymentType)
		assert.Equal(t, PaymentStatusDue, updated.Payers[0].Status)
	})

	t.Run("should reject invalid values", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		created, err := service.Create(ctx, newItem("Props", 200), []string{"Mika"})
		require.NoError(t, err)

		badStatus := PaymentStatus("unknown")
		_, err = service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{Status: &badStatus})
		assert.ErrorIs(t, err, ErrInvalidPaymentStatus)

		badType := PaymentType("cheque")
		_, err = service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{PaymentType: &badType})
		assert.ErrorIs(t, err, ErrInvalidPaymentType)

		negative := -1.0
		_, err = service.UpdatePayer(ctx, created.Id, "Mika", PayerChange{AmountPaid: &negative})
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should filter by type and person and sort by total", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, newItem("Cheap prop", 10), []string{"Mika"})
		require.NoError(t, err)
		_, err = service.Create(ctx, newItem("Pricey prop", 500), []string{"Mika", "Ella"})
		require.NoError(t, err)
		assistance := newItem("Helper", 100)
		assistance.Type = ItemTypeAssistance
		_, err = service.Create(ctx, assistance, []string{"Ella"})
		require.NoError(t, err)

		// when
		props, err := service.List(ctx, "lantern", Filter{Type: ItemTypeProp}, SortByTotal)

		// then
		require.NoError(t, err)
		require.Len(t, props, 2)
		assert.Equal(t, "Pricey prop", props[0].Name)

		// when
		mikas, err := service.List(ctx, "lantern", Filter{People: []string{"Mika"}}, SortByCreated)

		// then
		require.NoError(t, err)
		assert.Len(t, mikas, 2)
	})
}

func TestServiceImpl_PersonView(t *testing.T) {
	t.Run("should flatten rows ordered by payer then item name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, newItem("Banners", 100), []string{"Mika", "Ella"})
		require.NoError(t, err)
		_, err = service.Create(ctx, newItem("Anchors", 50), []string{"Mika"})
		require.NoError(t, err)

		// when
		rows, err := service.PersonView(ctx, "lantern", []string{"Mika", "Ella"})

		// then
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Ella", rows[0].Payer.Name)
		assert.Equal(t, "Banners", rows[0].ItemName)
		assert.Equal(t, "Mika", rows[1].Payer.Name)
		assert.Equal(t, "Anchors", rows[1].ItemName)
		assert.Equal(t, "Banners", rows[2].ItemName)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should delete an item and report missing ones", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, newItem("Temp", 10), nil)
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.Id)

		// then
		require.NoError(t, err)
		_, err = service.Get(ctx, created.Id)
		assert.ErrorIs(t, err, ErrItemNotFound)

		err = service.Delete(ctx, "missing")
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}
