package normalization

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kurtarapp/kurtar-backend/internal/types"
)

// ProfileSchemaVersion is bumped whenever a new optional profile field is
// introduced. Records stamped with the current version can be skipped by the
// bulk backfill.
const ProfileSchemaVersion = 3

var notificationPrefKeys = []string{"push", "email", "favorites", "proximity", "promotions"}

// ProfilePatch computes the partial update that brings a profile document up
// to the current schema. It returns only the fields that are absent or of the
// wrong structural kind; a conforming document yields an empty patch, which
// is how running the guard twice stays a no-op.
//
// One legacy quirk is preserved deliberately: profiles written before
// favoriteRestaurants became an array stored a single restaurant reference,
// and that value is wrapped into a one-element array rather than discarded.
func ProfilePatch(doc bson.M) bson.M {
	patch := bson.M{}

	switch v := doc["favoriteRestaurants"].(type) {
	case nil:
		patch["favoriteRestaurants"] = bson.A{}
	default:
		if !isList(v) {
			patch["favoriteRestaurants"] = bson.A{v}
		}
	}

	if !isList(doc["pushTokens"]) {
		patch["pushTokens"] = bson.A{}
	}
	if !isList(doc["inAppNotifications"]) {
		patch["inAppNotifications"] = bson.A{}
	}

	if prefs, ok := asDocument(doc["notificationPreferences"]); !ok {
		patch["notificationPreferences"] = defaultPrefsDoc()
	} else {
		// Newer flags are backfilled individually so user choices on the
		// older ones survive.
		for _, key := range notificationPrefKeys {
			if _, present := prefs[key]; !present {
				patch["notificationPreferences."+key] = true
			}
		}
	}

	if len(patch) > 0 {
		patch["schemaVersion"] = ProfileSchemaVersion
	}
	return patch
}

// ProfileConforms reports whether a document already carries the current
// schema, letting the bulk pass skip it without computing a patch.
func ProfileConforms(doc bson.M) bool {
	if v, ok := doc["schemaVersion"]; ok && asInt(v) >= ProfileSchemaVersion {
		return true
	}
	return len(ProfilePatch(doc)) == 0
}

func defaultPrefsDoc() bson.M {
	p := types.DefaultNotificationPreferences()
	return bson.M{
		"push":       p.Push,
		"email":      p.Email,
		"favorites":  p.Favorites,
		"proximity":  p.Proximity,
		"promotions": p.Promotions,
	}
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Slice
}
