package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/slotswap/internal/common"
	"github.com/dmitrijs2005/slotswap/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

// UserIDKey holds the authenticated caller id in the request context.
const UserIDKey ctxKey = "userID"

// publicMethods are served without an access token.
var publicMethods = map[string]struct{}{
	FullMethod("Ping"): {},
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, newStatus(codes.Unauthenticated, common.KindUnauthorized, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		msg := common.ErrInvalidToken.Error()
		if errors.Is(err, common.ErrTokenExpired) {
			msg = common.ErrTokenExpired.Error()
		}
		s.logger.Debug(ctx, "token rejected", "method", info.FullMethod, "error", err)
		return nil, newStatus(codes.Unauthenticated, common.KindUnauthorized, msg)
	}

	ctx = context.WithValue(ctx, UserIDKey, userID)
	return handler(ctx, req)
}

// callerID returns the user set by accessTokenInterceptor.
func callerID(ctx context.Context) (string, error) {
	id, ok := ctx.Value(UserIDKey).(string)
	if !ok || id == "" {
		return "", newStatus(codes.Unauthenticated, common.KindUnauthorized, "missing token")
	}
	return id, nil
}
