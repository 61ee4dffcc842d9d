package apitest

import "context"

func withUser(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, id)
}

func userFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxUserKey{}).(int64)
	return id
}
