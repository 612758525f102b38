package services

import (
	"reflect"
	"testing"

	"github.com/kurtarapp/kurtar-backend/internal/types"
)

func TestActivePushTokens(t *testing.T) {
	tokens := []types.PushToken{
		{Token: "ExponentPushToken[aaa]", Platform: "ios", Active: true},
		// Retired provider entry, deactivated by migration but never deleted.
		{Token: "fcm:legacy-token", Platform: "android", Active: false},
		// Legacy scheme that somehow kept its active flag: still excluded.
		{Token: "fcm:other-legacy", Platform: "android", Active: true},
		{Token: "ExponentPushToken[bbb]", Platform: "android", Active: true},
		{Token: "ExponentPushToken[ccc]", Platform: "ios", Active: false},
	}
	got := ActivePushTokens(tokens)
	want := []string{"ExponentPushToken[aaa]", "ExponentPushToken[bbb]"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ActivePushTokens=%v, want %v", got, want)
	}
}

func TestActivePushTokensEmpty(t *testing.T) {
	if got := ActivePushTokens(nil); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}
