package services

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"badmintonStore/entities"
	"badmintonStore/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

func invalid(format string, args ...any) error {
	return errors.Wrap(models.ErrValidation, fmt.Sprintf(format, args...))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// checkStruct runs the validate tags of s and reports the first failing
// field by its JSON path, prefixed with prefix when set.
func checkStruct(prefix string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(models.ErrValidation, err.Error())
	}
	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	if prefix != "" {
		field = prefix + "." + field
	}
	return invalid("%s", fieldMessage(field, fe))
}

// fieldPath drops the root type and embedded struct names from a
// validator namespace, keeping the JSON names.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	kept := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		if r, _ := utf8.DecodeRuneInString(p); unicode.IsUpper(r) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return field + " must not be negative"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be a non-empty array", field)
	case "url":
		return field + " must be a URL"
	case "email":
		return field + " is not valid"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
}

func checkCategory(category string) error {
	if !entities.IsCategory(category) {
		return errors.Wrapf(models.ErrNotFound, "category %s", category)
	}
	return nil
}

func validateProduct(category string, p entities.Product) error {
	if err := checkStruct("", p); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, c := range p.Colors {
		if err := checkColorShape(category, c, fmt.Sprintf("colors[%d]", i)); err != nil {
			return err
		}
		if seen[c.Color] {
			return invalid("colors[%d].color %q is duplicated", i, c.Color)
		}
		seen[c.Color] = true
	}
	return nil
}

func validateColor(category string, c entities.ColorVariant, field string) error {
	if err := checkStruct(field, c); err != nil {
		return err
	}
	return checkColorShape(category, c, field)
}

// checkColorShape enforces the rules that depend on the category: flat
// categories keep a quantity on the color, the others need labelled variants.
func checkColorShape(category string, c entities.ColorVariant, field string) error {
	kind := entities.KindOf(category)
	if kind == entities.NoVariants {
		if c.Quantity == nil {
			return invalid("%s.quantity is required", field)
		}
		if len(c.Variants) > 0 {
			return invalid("%s.variants are not supported for %s", field, category)
		}
		return nil
	}

	if len(c.Variants) == 0 {
		return invalid("%s.variants must be a non-empty array", field)
	}
	seen := map[string]bool{}
	for i, v := range c.Variants {
		vf := fmt.Sprintf("%s.variants[%d]", field, i)
		if err := checkVariantLabel(kind, v, vf); err != nil {
			return err
		}
		label := v.Label(kind)
		if seen[label] {
			return invalid("%s.%s %q is duplicated", vf, kind.LabelField(), label)
		}
		seen[label] = true
	}
	return nil
}

func validateVariant(kind entities.VariantKind, v entities.Variant, field string) error {
	if err := checkStruct(field, v); err != nil {
		return err
	}
	return checkVariantLabel(kind, v, field)
}

func checkVariantLabel(kind entities.VariantKind, v entities.Variant, field string) error {
	if isBlank(v.Label(kind)) {
		return invalid("%s.%s is required", field, kind.LabelField())
	}
	return nil
}

func validatePatch(patch entities.ProductPatch) error {
	if patch.Empty() {
		return invalid("nothing to update")
	}
	return checkStruct("", patch)
}

func validateDelivery(req entities.OrderRequest) error {
	return checkStruct("", req)
}
