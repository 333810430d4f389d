// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// ValidateItemForCreation performs cross-field validation on a fully-constructed
// Item aggregate before it is persisted. The name is re-checked because
// callers may build an Item from a raw ItemName conversion.
func ValidateItemForCreation(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if err := validateName(item.Name); err != nil {
		return err
	}

	if err := models.ValidateQuantity(item.Quantity); err != nil {
		return err
	}

	if item.TenantID == uuid.Nil {
		return fmt.Errorf("tenant_id must be set")
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	return nil
}

// ValidatePatch rejects patches that change nothing or carry invalid values.
func ValidatePatch(patch models.ItemPatch) error {
	if patch.IsEmpty() {
		return domain.ErrEmptyPatch
	}
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return err
		}
	}
	if patch.Quantity != nil {
		if err := models.ValidateQuantity(*patch.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// validateName requires name to already be in the form NewItemName produces.
func validateName(name models.ItemName) error {
	n, err := models.NewItemName(name.String())
	if err != nil {
		return err
	}
	if n != name {
		return fmt.Errorf("%w: surrounding whitespace", domain.ErrInvalidItemName)
	}
	return nil
}
