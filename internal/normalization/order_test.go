package normalization

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeOrderEquivalentLayouts(t *testing.T) {
	// The same purchase recorded under each historical layout: two Tavuk
	// Döner packages at 50 (down from 80) and one Waffle at 30 (down from 45).
	itemsLayout := map[string]any{
		"items": []any{
			map[string]any{"name": "Tavuk Döner", "originalPrice": 80, "price": 50, "quantity": 2},
			map[string]any{"name": "Waffle", "originalPrice": 45, "price": 30, "quantity": 1},
		},
	}
	packagesLayout := map[string]any{
		"packages": []any{
			map[string]any{"packageName": "Tavuk Döner", "originalPrice": 80, "price": 50, "quantity": 2},
			map[string]any{"packageName": "Waffle", "originalPrice": 45, "price": 30, "quantity": 1},
		},
	}

	for name, doc := range map[string]map[string]any{"items": itemsLayout, "packages": packagesLayout} {
		t.Run(name, func(t *testing.T) {
			o := NormalizeOrder(doc)
			if len(o.Items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(o.Items))
			}
			if o.TotalPrice != 130 {
				t.Fatalf("totalPrice=%v, want 130", o.TotalPrice)
			}
			if o.Savings != 75 {
				t.Fatalf("savings=%v, want 75", o.Savings)
			}
			if o.Items[0].Name != "Tavuk Döner" || o.Items[1].Name != "Waffle" {
				t.Fatalf("item names not mapped: %+v", o.Items)
			}
		})
	}
}

func TestNormalizeOrderPackagesExample(t *testing.T) {
	o := NormalizeOrder(map[string]any{
		"packages": []any{
			map[string]any{"packageName": "Tavuk Döner", "price": 50, "quantity": 2},
		},
	})
	if len(o.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(o.Items))
	}
	it := o.Items[0]
	if it.Name != "Tavuk Döner" || it.Price != 50 || it.Quantity != 2 || it.Total != 100 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if o.TotalPrice != 100 {
		t.Fatalf("totalPrice=%v, want 100", o.TotalPrice)
	}
}

func TestNormalizeOrderSinglePackage(t *testing.T) {
	o := NormalizeOrder(map[string]any{
		"package":  map[string]any{"name": "Waffle", "price": 30},
		"quantity": 3,
	})
	if len(o.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(o.Items))
	}
	it := o.Items[0]
	if it.Name != "Waffle" || it.Quantity != 3 || it.Total != 90 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if o.TotalPrice != 90 {
		t.Fatalf("totalPrice=%v, want 90", o.TotalPrice)
	}
}

func TestNormalizeOrderSinglePackageDefaultQuantity(t *testing.T) {
	o := NormalizeOrder(map[string]any{
		"package": map[string]any{"name": "Kumpir", "price": 40},
	})
	if len(o.Items) != 1 || o.Items[0].Quantity != 1 {
		t.Fatalf("expected one item with quantity 1, got %+v", o.Items)
	}
	if o.TotalPrice != 40 {
		t.Fatalf("totalPrice=%v, want 40", o.TotalPrice)
	}
}

func TestNormalizeOrderNoItems(t *testing.T) {
	o := NormalizeOrder(map[string]any{"status": "pending"})
	if o.Items == nil || len(o.Items) != 0 {
		t.Fatalf("expected empty item list, got %#v", o.Items)
	}
	if o.TotalPrice != 0 || o.Savings != 0 {
		t.Fatalf("expected zero totals, got total=%v savings=%v", o.TotalPrice, o.Savings)
	}
}

func TestNormalizeOrderLegacyTotalFallbacks(t *testing.T) {
	cases := []struct {
		name string
		doc  map[string]any
		want float64
	}{
		{"totalPrice", map[string]any{"totalPrice": 120.5}, 120.5},
		{"nestedPricing", map[string]any{"pricing": map[string]any{"total": 75}}, 75},
		{"totalAmount", map[string]any{"totalAmount": int64(60)}, 60},
		{"nothing", map[string]any{}, 0},
		{
			"itemsWin",
			map[string]any{
				"totalAmount": 999,
				"items":       []any{map[string]any{"name": "Pide", "price": 25, "quantity": 2}},
			},
			50,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeOrder(tc.doc).TotalPrice; got != tc.want {
				t.Fatalf("totalPrice=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeOrderCoercesScalars(t *testing.T) {
	restaurantID := primitive.NewObjectID()
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	o := NormalizeOrder(map[string]any{
		"_id":        primitive.NewObjectID(),
		"customer":   bson.M{"id": "u-1", "name": "Deniz"},
		"restaurant": bson.M{"_id": restaurantID, "name": "Simit Evi"},
		"items": primitive.A{
			bson.M{"name": "Simit Kutusu", "price": "12.5", "quantity": int32(4)},
		},
		"createdAt": primitive.DateTime(created.UnixMilli()),
		"updatedAt": "2025-03-14T10:00:00Z",
	})
	if o.Restaurant.ID != restaurantID.Hex() {
		t.Fatalf("restaurant id = %q, want hex of stored ObjectID", o.Restaurant.ID)
	}
	if o.Customer.ID != "u-1" {
		t.Fatalf("customer id = %q", o.Customer.ID)
	}
	if o.Items[0].Price != 12.5 || o.Items[0].Quantity != 4 || o.Items[0].Total != 50 {
		t.Fatalf("coercion failed: %+v", o.Items[0])
	}
	if o.CreatedAt != "2025-03-14T09:30:00Z" {
		t.Fatalf("createdAt=%q", o.CreatedAt)
	}
	if o.UpdatedAt != "2025-03-14T10:00:00Z" {
		t.Fatalf("updatedAt passed through wrong: %q", o.UpdatedAt)
	}
}

func TestNormalizeOrderItemTotals(t *testing.T) {
	o := NormalizeOrder(map[string]any{
		"items": []any{
			map[string]any{"name": "A", "price": 10, "quantity": 3},
			map[string]any{"name": "B", "price": 7.25, "quantity": 2, "total": 14.5},
		},
	})
	var sum float64
	for _, it := range o.Items {
		if want := round2(it.Price * float64(it.Quantity)); it.Total != want {
			t.Fatalf("item %s total=%v, want %v", it.Name, it.Total, want)
		}
		sum += it.Total
	}
	if o.TotalPrice != sum {
		t.Fatalf("totalPrice=%v, want sum of item totals %v", o.TotalPrice, sum)
	}
}

func TestNormalizeOrderIdempotent(t *testing.T) {
	docs := []map[string]any{
		{
			"orderId":    "ord-1",
			"pickupCode": "A1B2C3",
			"customer":   map[string]any{"id": "u-9", "name": "Ece", "email": "ece@example.com"},
			"restaurant": map[string]any{"id": "r-4", "name": "Lezzet Durağı", "address": "Kadıköy"},
			"packages": []any{
				map[string]any{"packageName": "Sürpriz Paket", "originalPrice": 90, "price": 45, "quantity": 2},
			},
			"paymentMethod": "card",
			"status":        "confirmed",
			"createdAt":     "2025-01-02T08:00:00Z",
			"updatedAt":     "2025-01-02T08:05:00Z",
		},
		{
			"package":   map[string]any{"name": "Waffle", "price": 30},
			"quantity":  3,
			"createdAt": "2025-01-02T08:00:00Z",
			"updatedAt": "2025-01-02T08:00:00Z",
		},
		{
			"totalAmount": 55,
			"createdAt":   "2025-01-02T08:00:00Z",
			"updatedAt":   "2025-01-02T08:00:00Z",
		},
	}
	for i, doc := range docs {
		once := NormalizeOrder(doc)
		twice := NormalizeOrder(Document(once))
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("case %d not idempotent:\nonce:  %+v\ntwice: %+v", i, once, twice)
		}
	}
}

func TestNormalizeOrderSavingsNeverNegative(t *testing.T) {
	o := NormalizeOrder(map[string]any{
		"items": []any{
			// Price above original: no savings contribution.
			map[string]any{"name": "Zam Paketi", "originalPrice": 20, "price": 25, "quantity": 2},
			map[string]any{"name": "İndirimli", "originalPrice": 30, "price": 20, "quantity": 1},
		},
	})
	if o.Savings != 10 {
		t.Fatalf("savings=%v, want 10", o.Savings)
	}
}
