package grpc

import (
	"github.com/dmitrijs2005/slotswap/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codeByKind = map[string]codes.Code{
	common.KindNotFound:       codes.NotFound,
	common.KindForbidden:      codes.PermissionDenied,
	common.KindInvalidRequest: codes.InvalidArgument,
	common.KindInvalidState:   codes.FailedPrecondition,
	common.KindConflict:       codes.Aborted,
	common.KindInconsistent:   codes.DataLoss,
	common.KindUnauthorized:   codes.Unauthenticated,
}

// statusError converts a service error into a gRPC status carrying the
// error kind as an ErrorInfo detail. Internal failures do not leak their
// message.
func statusError(err error) error {
	kind := common.KindOf(err)
	code, ok := codeByKind[kind]
	msg := err.Error()
	if !ok {
		code, kind, msg = codes.Internal, common.KindInternal, common.ErrorInternal.Error()
	}
	return newStatus(code, kind, msg)
}

func newStatus(code codes.Code, kind, msg string) error {
	st := status.New(code, msg)
	if withInfo, err := st.WithDetails(&errdetails.ErrorInfo{Reason: kind, Domain: common.ErrorDomain}); err == nil {
		st = withInfo
	}
	return st.Err()
}

// KindFromStatus extracts the error kind from a status produced by this
// server, or "" when there is none.
func KindFromStatus(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == common.ErrorDomain {
			return info.GetReason()
		}
	}
	return ""
}
