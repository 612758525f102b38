package requestdata

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var requestDataKey = struct{}{}

type RequestData struct {
	TokenString string
	UserID      primitive.ObjectID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
