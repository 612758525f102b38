package normalization

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func conformingProfile() bson.M {
	return bson.M{
		"_id":                 primitive.NewObjectID(),
		"email":               "deniz@example.com",
		"favoriteRestaurants": bson.A{},
		"pushTokens":          bson.A{},
		"inAppNotifications":  bson.A{},
		"notificationPreferences": bson.M{
			"push": true, "email": true, "favorites": true, "proximity": true, "promotions": true,
		},
	}
}

func TestProfilePatchConformingDocIsEmpty(t *testing.T) {
	patch := ProfilePatch(conformingProfile())
	if len(patch) != 0 {
		t.Fatalf("expected empty patch, got %v", patch)
	}
}

func TestProfilePatchDefaultsAllMissingFields(t *testing.T) {
	patch := ProfilePatch(bson.M{"_id": primitive.NewObjectID(), "email": "a@b.c"})
	for _, key := range []string{"favoriteRestaurants", "pushTokens", "inAppNotifications"} {
		arr, ok := patch[key].(bson.A)
		if !ok || len(arr) != 0 {
			t.Fatalf("%s: expected empty array default, got %#v", key, patch[key])
		}
	}
	prefs, ok := patch["notificationPreferences"].(bson.M)
	if !ok {
		t.Fatalf("notificationPreferences default missing: %#v", patch["notificationPreferences"])
	}
	for _, flag := range []string{"push", "email", "favorites", "proximity", "promotions"} {
		if prefs[flag] != true {
			t.Fatalf("default for %s must be true, got %+v", flag, prefs)
		}
	}
	if patch["schemaVersion"] != ProfileSchemaVersion {
		t.Fatalf("patch must stamp schemaVersion, got %v", patch["schemaVersion"])
	}
}

func TestProfilePatchWrapsScalarFavorite(t *testing.T) {
	fav := primitive.NewObjectID()
	patch := ProfilePatch(bson.M{"favoriteRestaurants": fav})
	wrapped, ok := patch["favoriteRestaurants"].(bson.A)
	if !ok || len(wrapped) != 1 || wrapped[0] != fav {
		t.Fatalf("scalar favorite must become a one-element array, got %#v", patch["favoriteRestaurants"])
	}
}

func TestProfilePatchKeepsExistingCollections(t *testing.T) {
	doc := conformingProfile()
	doc["favoriteRestaurants"] = bson.A{primitive.NewObjectID()}
	doc["pushTokens"] = bson.A{bson.M{"token": "ExponentPushToken[abc]", "platform": "ios", "active": true}}
	patch := ProfilePatch(doc)
	if _, ok := patch["favoriteRestaurants"]; ok {
		t.Fatalf("populated favorites must not be touched: %v", patch)
	}
	if _, ok := patch["pushTokens"]; ok {
		t.Fatalf("populated pushTokens must not be touched: %v", patch)
	}
}

func TestProfilePatchBackfillsNewPrefFlags(t *testing.T) {
	doc := conformingProfile()
	// promotions flag postdates this record; the user had turned email off.
	doc["notificationPreferences"] = bson.M{
		"push": true, "email": false, "favorites": true, "proximity": true,
	}
	patch := ProfilePatch(doc)
	if patch["notificationPreferences.promotions"] != true {
		t.Fatalf("missing promotions flag must backfill to true, got %v", patch)
	}
	if _, ok := patch["notificationPreferences.email"]; ok {
		t.Fatalf("existing email choice must survive: %v", patch)
	}
	if _, ok := patch["notificationPreferences"]; ok {
		t.Fatalf("whole prefs struct must not be replaced: %v", patch)
	}
}

func TestProfilePatchIdempotent(t *testing.T) {
	doc := bson.M{"favoriteRestaurants": "5f2a", "notificationPreferences": "yes"}
	patch := ProfilePatch(doc)
	if len(patch) == 0 {
		t.Fatal("first pass should produce a patch")
	}
	// Apply the patch the way $set would and run the guard again.
	for k, v := range patch {
		doc[k] = v
	}
	if second := ProfilePatch(doc); len(second) != 0 {
		t.Fatalf("second pass must be a no-op, got %v", second)
	}
}

func TestProfileConforms(t *testing.T) {
	if ProfileConforms(bson.M{}) {
		t.Fatal("empty doc cannot conform")
	}
	if !ProfileConforms(bson.M{"schemaVersion": int32(ProfileSchemaVersion)}) {
		t.Fatal("stamped doc must conform without a patch")
	}
	if !ProfileConforms(conformingProfile()) {
		t.Fatal("structurally complete doc must conform")
	}
}
