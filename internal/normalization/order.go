package normalization

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kurtarapp/kurtar-backend/internal/types"
)

// itemLayout names the historical layouts an order's line items were stored
// under. Orders written before the items array existed carry either a
// "packages" array with renamed fields or a singular "package" document with
// the quantity at the top level.
type itemLayout int

const (
	layoutNone itemLayout = iota
	layoutItems
	layoutPackages
	layoutSinglePackage
)

// NormalizeOrder folds any stored order layout into the canonical shape.
// It is pure and idempotent: feeding its own output back through
// (*types.Order).Document reproduces the same order, and an order with no
// recognizable item layout comes back with empty items and zero totals
// rather than an error.
func NormalizeOrder(doc map[string]any) *types.Order {
	o := &types.Order{
		ID:            asString(valueAt(doc, "_id")),
		OrderID:       asString(valueAt(doc, "orderId")),
		PickupCode:    asString(valueAt(doc, "pickupCode")),
		PaymentMethod: asString(valueAt(doc, "paymentMethod")),
		PaymentStatus: asString(valueAt(doc, "paymentStatus")),
		Status:        asString(valueAt(doc, "status")),
		Notes:         asString(valueAt(doc, "notes")),
		PickupTime:    asString(valueAt(doc, "pickupTime")),
		CreatedAt:     asTimestamp(valueAt(doc, "createdAt")),
		UpdatedAt:     asTimestamp(valueAt(doc, "updatedAt")),
	}
	if v := valueAt(doc, "pickupDeadline"); v != nil {
		o.PickupDeadline = asTimestamp(v)
	}
	if details, ok := asDocument(valueAt(doc, "paymentDetails")); ok {
		o.PaymentDetails = details
	}

	o.Customer = normalizeCustomer(valueAt(doc, "customer"))
	o.Restaurant = normalizeRestaurant(valueAt(doc, "restaurant"))

	layout, entries, single := detectItemLayout(doc)
	switch layout {
	case layoutItems:
		o.Items = make([]types.OrderItem, 0, len(entries))
		for _, e := range entries {
			o.Items = append(o.Items, normalizeItem(e, "name", 0))
		}
	case layoutPackages:
		o.Items = make([]types.OrderItem, 0, len(entries))
		for _, e := range entries {
			o.Items = append(o.Items, normalizeItem(e, "packageName", 0))
		}
	case layoutSinglePackage:
		qty := asInt(valueAt(doc, "quantity"))
		if qty <= 0 {
			qty = 1
		}
		o.Items = []types.OrderItem{normalizeItem(single, "name", qty)}
	case layoutNone:
		o.Items = []types.OrderItem{}
	}

	var sum, savings float64
	for _, it := range o.Items {
		sum += it.Total
		if perUnit := it.OriginalPrice - it.Price; perUnit > 0 {
			savings += perUnit * float64(it.Quantity)
		}
	}
	o.Savings = round2(savings)

	if sum == 0 {
		sum = legacyTotal(doc)
	}
	o.TotalPrice = round2(sum)

	return o
}

// detectItemLayout dispatches once over the known layouts, in priority order.
func detectItemLayout(doc map[string]any) (itemLayout, []map[string]any, map[string]any) {
	if entries := documentList(valueAt(doc, "items")); len(entries) > 0 {
		return layoutItems, entries, nil
	}
	if entries := documentList(valueAt(doc, "packages")); len(entries) > 0 {
		return layoutPackages, entries, nil
	}
	if single, ok := asDocument(valueAt(doc, "package")); ok && len(single) > 0 {
		return layoutSinglePackage, nil, single
	}
	return layoutNone, nil, nil
}

func normalizeItem(entry map[string]any, nameKey string, quantityOverride int) types.OrderItem {
	it := types.OrderItem{
		PackageID:     asString(valueAt(entry, "packageId")),
		Name:          asString(valueAt(entry, nameKey)),
		Description:   asString(valueAt(entry, "description")),
		OriginalPrice: asFloat(valueAt(entry, "originalPrice")),
		Price:         asFloat(valueAt(entry, "price")),
		Quantity:      asInt(valueAt(entry, "quantity")),
	}
	if it.Name == "" && nameKey != "name" {
		it.Name = asString(valueAt(entry, "name"))
	}
	if quantityOverride > 0 {
		it.Quantity = quantityOverride
	}
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	if it.OriginalPrice == 0 {
		it.OriginalPrice = it.Price
	}
	it.Total = asFloat(valueAt(entry, "total"))
	if it.Total == 0 {
		it.Total = round2(it.Price * float64(it.Quantity))
	}
	return it
}

func normalizeCustomer(v any) types.OrderCustomer {
	sub, _ := asDocument(v)
	return types.OrderCustomer{
		ID:    asString(firstValue(sub, "id", "_id", "customerId")),
		Name:  asString(valueAt(sub, "name")),
		Email: asString(valueAt(sub, "email")),
		Phone: asString(valueAt(sub, "phone")),
	}
}

func normalizeRestaurant(v any) types.OrderRestaurant {
	sub, _ := asDocument(v)
	return types.OrderRestaurant{
		ID:      asString(firstValue(sub, "id", "_id", "restaurantId")),
		Name:    asString(valueAt(sub, "name")),
		Address: asString(valueAt(sub, "address")),
	}
}

// legacyTotal walks the historical total fields in the order they were used.
func legacyTotal(doc map[string]any) float64 {
	if v := asFloat(valueAt(doc, "totalPrice")); v != 0 {
		return v
	}
	if pricing, ok := asDocument(valueAt(doc, "pricing")); ok {
		if v := asFloat(valueAt(pricing, "total")); v != 0 {
			return v
		}
	}
	if v := asFloat(valueAt(doc, "totalAmount")); v != 0 {
		return v
	}
	return 0
}

// Document renders a canonical order back into the raw map form accepted by
// NormalizeOrder, which is how the round-trip property is stated and tested.
func Document(o *types.Order) map[string]any {
	items := make([]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"packageId":     it.PackageID,
			"name":          it.Name,
			"description":   it.Description,
			"originalPrice": it.OriginalPrice,
			"price":         it.Price,
			"quantity":      it.Quantity,
			"total":         it.Total,
		})
	}
	doc := map[string]any{
		"_id":        o.ID,
		"orderId":    o.OrderID,
		"pickupCode": o.PickupCode,
		"customer": map[string]any{
			"id":    o.Customer.ID,
			"name":  o.Customer.Name,
			"email": o.Customer.Email,
			"phone": o.Customer.Phone,
		},
		"restaurant": map[string]any{
			"id":      o.Restaurant.ID,
			"name":    o.Restaurant.Name,
			"address": o.Restaurant.Address,
		},
		"items":         items,
		"totalPrice":    o.TotalPrice,
		"savings":       o.Savings,
		"paymentMethod": o.PaymentMethod,
		"paymentStatus": o.PaymentStatus,
		"status":        o.Status,
		"createdAt":     o.CreatedAt,
		"updatedAt":     o.UpdatedAt,
	}
	if o.PaymentDetails != nil {
		doc["paymentDetails"] = o.PaymentDetails
	}
	if o.Notes != "" {
		doc["notes"] = o.Notes
	}
	if o.PickupTime != "" {
		doc["pickupTime"] = o.PickupTime
	}
	if o.PickupDeadline != "" {
		doc["pickupDeadline"] = o.PickupDeadline
	}
	return doc
}

// valueAt tolerates both plain maps and bson documents.
func valueAt(doc map[string]any, key string) any {
	if doc == nil {
		return nil
	}
	return doc[key]
}

func firstValue(doc map[string]any, keys ...string) any {
	for _, k := range keys {
		if v := valueAt(doc, k); v != nil {
			return v
		}
	}
	return nil
}

// asDocument coerces the shapes an embedded document can decode into.
func asDocument(v any) (map[string]any, bool) {
	switch d := v.(type) {
	case map[string]any:
		return d, true
	case bson.M:
		return map[string]any(d), true
	case bson.D:
		return d.Map(), true
	}
	return nil, false
}

func documentList(v any) []map[string]any {
	var raw []any
	switch l := v.(type) {
	case []any:
		raw = l
	case primitive.A:
		raw = []any(l)
	case []map[string]any:
		out := make([]map[string]any, 0, len(l))
		out = append(out, l...)
		return out
	case []bson.M:
		out := make([]map[string]any, 0, len(l))
		for _, m := range l {
			out = append(out, map[string]any(m))
		}
		return out
	default:
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if d, ok := asDocument(e); ok {
			out = append(out, d)
		}
	}
	return out
}

// asString coerces identifier-like values: native object references become
// their hex form, everything else its string form.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case primitive.ObjectID:
		return s.Hex()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case primitive.Decimal128:
		f, _ := strconv.ParseFloat(n.String(), 64)
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

// asTimestamp coerces date-like values to ISO-8601. Values that already are
// strings pass through untouched; anything unrecognized defaults to now so a
// canonical order never lacks its timestamps.
func asTimestamp(v any) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func round2(f float64) float64 {
	return float64(int64(f*100+sign(f)*0.5)) / 100
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
