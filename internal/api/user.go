package api

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"net/http"
	"strings"

	"whatsnext/internal/auth"
	"whatsnext/internal/httputils"
	"whatsnext/internal/identity"
	"whatsnext/internal/observability/logging"
	"whatsnext/internal/store"
	"whatsnext/internal/validate"

	"golang.org/x/exp/slices"
)

var (
	allowedImageTypes = []string{"image/jpeg", "image/png"}

	// provider codes that mean the credentials did not check out
	wrongCredentialCodes = []string{identity.CodeWrongPassword, identity.CodeUserNotFound, identity.CodeInvalidEmail}
)

func (r *Router) signUp(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := logging.FromContextOr(ctx, r.logger)

	var in validate.SignupInput
	if err := httputils.DecodeJSON(req, &in); err != nil {
		r.badBody(w, req, err)
		return
	}

	if res := validate.Signup(in); !res.Valid {
		r.metrics.RecordValidationFailure("signup")
		httputils.FailFields(w, http.StatusBadRequest, res.Errors)
		return
	}

	_, err := r.store.GetUser(ctx, in.Handle)
	switch {
	case err == nil:
		httputils.FailFields(w, http.StatusBadRequest, map[string]string{"handle": "This handle is already taken"})
		return
	case !errors.Is(err, store.ErrNotFound):
		r.internalError(w, req, "Failed to check handle", err)
		return
	}

	session, err := r.provider.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		if identity.CodeOf(err) == identity.CodeEmailAlreadyInUse {
			httputils.FailFields(w, http.StatusBadRequest, map[string]string{"email": "Email is already in use"})
			return
		}
		r.internalError(w, req, "Sign up failed", err)
		return
	}

	user := store.User{
		Handle:    in.Handle,
		Email:     in.Email,
		CreatedAt: store.Timestamp(r.now()),
		UserID:    session.UserID,
	}
	if err := r.store.CreateUser(ctx, user); err != nil {
		// the account is useless without a user record and would block the email
		if delErr := r.provider.DeleteAccount(ctx, session); delErr != nil {
			logger.Error("Failed to remove orphaned account", "user_id", session.UserID, logging.Err(delErr))
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			// lost a race for the handle after the check above
			httputils.FailFields(w, http.StatusBadRequest, map[string]string{"handle": "This handle is already taken"})
			return
		}
		r.internalError(w, req, "Failed to save user", err)
		return
	}

	logger.Info("User signed up", "handle", user.Handle, "provider", r.provider.Name())
	httputils.OK(w, http.StatusCreated, httputils.Envelope{
		"msg":   fmt.Sprintf("User %s signed up successfully!", session.UserID),
		"token": session.IDToken,
	})
}

func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var in validate.LoginInput
	if err := httputils.DecodeJSON(req, &in); err != nil {
		r.badBody(w, req, err)
		return
	}

	if res := validate.Login(in); !res.Valid {
		r.metrics.RecordValidationFailure("login")
		httputils.FailFields(w, http.StatusBadRequest, res.Errors)
		return
	}

	session, err := r.provider.SignIn(req.Context(), in.Email, in.Password)
	if err != nil {
		if slices.Contains(wrongCredentialCodes, identity.CodeOf(err)) {
			httputils.FailFields(w, http.StatusForbidden, map[string]string{"general": "Wrong credentials, please try again."})
			return
		}
		r.internalError(w, req, "Sign in failed", err)
		return
	}

	httputils.OK(w, http.StatusOK, httputils.Envelope{"token": session.IDToken})
}

// getUser returns the caller's profile and likes
func (r *Router) getUser(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	id := auth.IdentityFromContext(ctx)

	user, err := r.store.GetUser(ctx, id.Handle)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputils.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		r.internalError(w, req, "Failed to load user", err)
		return
	}

	likes, err := r.store.ListLikesByHandle(ctx, id.Handle)
	if err != nil {
		r.internalError(w, req, "Failed to load likes", err)
		return
	}
	if likes == nil {
		likes = []store.Like{}
	}

	httputils.OK(w, http.StatusOK, httputils.Envelope{
		"userData": httputils.Envelope{"credentials": user, "likes": likes},
	})
}

func (r *Router) addUserDetails(w http.ResponseWriter, req *http.Request) {
	id := auth.IdentityFromContext(req.Context())

	var in validate.UserDetailsInput
	if err := httputils.DecodeJSON(req, &in); err != nil {
		r.badBody(w, req, err)
		return
	}

	details := validate.ReduceUserDetails(in)
	if details.IsEmpty() {
		r.metrics.RecordValidationFailure("details")
		httputils.Fail(w, http.StatusBadRequest, "No details to update.")
		return
	}

	if err := r.store.UpdateUserDetails(req.Context(), id.Handle, details); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputils.Fail(w, http.StatusNotFound, "User not found")
			return
		}
		r.internalError(w, req, "Failed to update user details", err)
		return
	}

	httputils.OK(w, http.StatusOK, httputils.Envelope{"msg": "Details added successfully."})
}

// uploadImage stores the first file part of a multipart body as the caller's profile image
func (r *Router) uploadImage(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	id := auth.IdentityFromContext(ctx)
	logger := logging.FromContextOr(ctx, r.logger)

	mr, err := req.MultipartReader()
	if err != nil {
		r.badBody(w, req, err)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			httputils.WriteJSON(w, http.StatusBadRequest, httputils.Envelope{"success": false, "error": "No image provided"})
			return
		}
		if err != nil {
			r.badBody(w, req, err)
			return
		}
		if part.FileName() == "" {
			part.Close()
			continue
		}

		contentType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if !slices.Contains(allowedImageTypes, contentType) {
			part.Close()
			httputils.WriteJSON(w, http.StatusBadRequest, httputils.Envelope{"success": false, "error": "File type must be .png or .jpeg"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(part, r.config.MaxImageBytes+1))
		part.Close()
		if err != nil {
			r.badBody(w, req, err)
			return
		}
		if int64(len(data)) > r.config.MaxImageBytes {
			httputils.WriteJSON(w, http.StatusRequestEntityTooLarge, httputils.Envelope{"success": false, "error": "Image is too large"})
			return
		}

		key := imageFileName(part.FileName())
		url, err := r.objects.Upload(ctx, key, contentType, data)
		r.metrics.RecordImageUpload(r.objects.Name(), err == nil)
		if err != nil {
			r.internalError(w, req, "Failed to upload image", err)
			return
		}

		if err := r.store.SetUserImage(ctx, id.Handle, url); err != nil {
			r.internalError(w, req, "Failed to save image URL", err)
			return
		}

		logger.Info("Image uploaded", "handle", id.Handle, "key", key, "bytes", len(data))
		httputils.OK(w, http.StatusOK, httputils.Envelope{"msg": "Image uploaded successfully"})
		return
	}
}

// imageFileName builds a random numeric name keeping the lowercased extension of the original
func imageFileName(original string) string {
	ext := original
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = original[i+1:]
	}
	ext = strings.ToLower(ext)
	// path separators must not end up in the object key
	ext = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, ext)
	return fmt.Sprintf("%d.%s", rand.Intn(1_000_000_000), ext)
}
