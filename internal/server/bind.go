package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/matzehuels/pkgtrack/pkg/errors"
)

const maxBodyBytes = 1 << 20

type validation struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	validationOnce sync.Once
	validationSvc  *validation
)

func validatorSvc() *validation {
	validationOnce.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		// report json names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			name, _, _ := strings.Cut(tag, ",")
			return name
		})
		_ = entranslations.RegisterDefaultTranslations(v, trans)

		validationSvc = &validation{validate: v, translator: trans}
	})
	return validationSvc
}

// decodeJSON reads a single JSON value into T and validates it. Failures are
// INVALID_ARGUMENT errors carrying the first translated validation message.
func decodeJSON[T any](r *http.Request) (T, error) {
	var dst T
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return dst, errors.New(errors.ErrCodeInvalidArgument, "empty body")
		}
		return dst, errors.Wrap(errors.ErrCodeInvalidArgument, err, "invalid JSON")
	}
	if dec.More() {
		return dst, errors.New(errors.ErrCodeInvalidArgument, "unexpected trailing data")
	}

	svc := validatorSvc()
	if err := svc.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			return dst, errors.New(errors.ErrCodeInvalidArgument, "%s", verrs[0].Translate(svc.translator))
		}
		return dst, errors.Wrap(errors.ErrCodeInvalidArgument, err, "validation error")
	}
	return dst, nil
}
