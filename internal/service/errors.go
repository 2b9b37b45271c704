package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// 错误类别，handler 按类别映射 HTTP 状态码
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// Error 带类别的业务错误，Error() 即返回给客户端的 message
type Error struct {
	Kind   error
	Msg    string
	Fields map[string]string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrUserNotFound      = newError(ErrNotFound, "user not found")
	ErrCommunityNotFound = newError(ErrNotFound, "community not found")
	ErrMemberNotFound    = newError(ErrNotFound, "member not found")
	ErrCategoryNotFound  = newError(ErrNotFound, "category not found")
	ErrPostNotFound      = newError(ErrNotFound, "post not found")
	ErrCommentNotFound   = newError(ErrNotFound, "comment not found")
	ErrReplyNotFound     = newError(ErrNotFound, "reply not found")

	ErrNotSelf          = newError(ErrForbidden, "only the member itself can do this")
	ErrNotMember        = newError(ErrForbidden, "join the community first")
	ErrNotManager       = newError(ErrForbidden, "staff or admin only")
	ErrNotAuthor        = newError(ErrForbidden, "only the author or a manager can do this")
	ErrProfileHidden    = newError(ErrForbidden, "this profile is not visible to you")
	ErrBlockedByTarget  = newError(ErrForbidden, "you have been blocked by this member")
	ErrTargetBlocked    = newError(ErrForbidden, "unblock this member first")
	ErrBlockedContent   = newError(ErrForbidden, "content from a blocked member")
	ErrOtherCommunity   = newError(ErrForbidden, "members belong to different communities")
	ErrWrongCredentials = newError(ErrForbidden, "invalid username or password")
	ErrWrongPassword    = newError(ErrForbidden, "old password is incorrect")

	ErrAlreadyMember       = newError(ErrConflict, "already a member of this community")
	ErrNicknameTaken       = newError(ErrConflict, "nickname already in use")
	ErrSelfFollow          = newError(ErrConflict, "cannot follow yourself")
	ErrSelfBlock           = newError(ErrConflict, "cannot block yourself")
	ErrFollowRequestExists = newError(ErrConflict, "follow request already sent")
	ErrAlreadyFollowing    = newError(ErrConflict, "already following")
	ErrCategoryExists      = newError(ErrConflict, "category name already in use")
	ErrUserExists          = newError(ErrConflict, "username or email already registered")
	ErrEdgeChanged         = newError(ErrConflict, "relationship was changed concurrently, try again")

	ErrNoFollowRequest = newError(ErrInvalidState, "no pending follow request")
	ErrNotFollowing    = newError(ErrInvalidState, "not following and no pending request")
	ErrNotBlocked      = newError(ErrInvalidState, "member is not blocked")
	ErrCommentDeleted  = newError(ErrInvalidState, "comment has been deleted")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误字段使用 json 名称
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// orNotFound 把 gorm 的记录不存在换成具体的业务错误
func orNotFound(err error, notFound *Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// validateInput 在打开事务之前校验输入
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Sprintf("failed on %s", fe.Tag())
	}
	return &Error{Kind: ErrValidation, Msg: "invalid input", Fields: fields}
}
