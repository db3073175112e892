package authz

import (
	"whatsnext/internal/observability/logging"
)

// OwnerOnly allows an action only to the identity that owns the resource
type OwnerOnly struct {
	logger *logging.Logger
}

// NewOwnerOnly creates an ownership authorizer
func NewOwnerOnly(logger *logging.Logger) *OwnerOnly {
	return &OwnerOnly{logger: logger.WithModule("authz.owner")}
}

// Authorize implements Authorizer
func (o *OwnerOnly) Authorize(req *Request) *Response {
	if req.Identity == nil || req.Identity.UserID == "" {
		return &Response{Decision: Unauthorized, Reason: "no identity"}
	}

	if req.OwnerID != req.Identity.UserID {
		o.logger.Debug("Access denied",
			"action", req.Action,
			"resource", req.Resource,
			"handle", req.Identity.Handle,
		)
		return &Response{Decision: Deny, Reason: "not the owner"}
	}

	return &Response{Decision: Allow}
}
