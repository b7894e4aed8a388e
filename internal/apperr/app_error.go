package apperr

import "github.com/casecraft/casecraft-api/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	EmailTakenCode        = "EMAIL_TAKEN"
	UsernameTakenCode     = "USERNAME_TAKEN"
	UserNotFoundCode      = "USER_NOT_FOUND"
	IncorrectPasswordCode = "INCORRECT_PASSWORD"
	InvalidTokenCode      = "INVALID_TOKEN"
	UserInactiveCode      = "USER_INACTIVE"
	AdminRequiredCode     = "ADMIN_REQUIRED"
	ProductNotFoundCode   = "PRODUCT_NOT_FOUND"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	EmailTakenErr    = zerror.NewBadRequest(EmailTakenCode, "user with this email already exists")
	UsernameTakenErr = zerror.NewBadRequest(UsernameTakenCode, "user with this username already exists")

	UserNotFoundErr      = zerror.NewUnauthorized(UserNotFoundCode, "user not found")
	IncorrectPasswordErr = zerror.NewUnauthorized(IncorrectPasswordCode, "incorrect password")
	InvalidTokenErr      = zerror.NewUnauthorized(InvalidTokenCode, "could not validate credentials")
	UserInactiveErr      = zerror.NewUnauthorized(UserInactiveCode, "inactive user")

	AdminRequiredErr = zerror.NewForbidden(AdminRequiredCode, "only administrators can perform this action")

	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "product not found")
)
