/*
Package model defines the records stored by the service and the closed enums they use.

Every enum has exactly one code/name table. Decoding from JSON, form values or database
columns goes through that table and fails on codes it does not list.
*/
package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"kinbrio/internal/pkg/errs"
)

type enumCode interface {
	~int16
}

// enumTable is the canonical code/name mapping for one enum type.
type enumTable[T enumCode] struct {
	kind  string
	names []string
}

func (t enumTable[T]) name(v T) string {
	if int(v) < 0 || int(v) >= len(t.names) {
		return fmt.Sprintf("%s(%d)", t.kind, int(v))
	}
	return t.names[v]
}

func (t enumTable[T]) unknown(raw any) error {
	return errs.WithKind(errs.KindValidation, fmt.Errorf("unknown %s %v", t.kind, raw))
}

func (t enumTable[T]) parse(code int64) (T, error) {
	if code < 0 || code >= int64(len(t.names)) {
		return 0, t.unknown(code)
	}
	return T(code), nil
}

func (t enumTable[T]) parseName(s string) (T, error) {
	for i, n := range t.names {
		if n == s {
			return T(i), nil
		}
	}
	if code, err := strconv.ParseInt(s, 10, 16); err == nil {
		return t.parse(code)
	}
	return 0, t.unknown(strconv.Quote(s))
}

// unmarshal accepts either the integer code or the canonical name.
func (t enumTable[T]) unmarshal(data []byte) (T, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, t.unknown(string(data))
		}
		return t.parseName(s)
	}
	code, err := strconv.ParseInt(string(data), 10, 16)
	if err != nil {
		return 0, t.unknown(string(data))
	}
	return t.parse(code)
}

// scan reads a smallint column.
func (t enumTable[T]) scan(src any) (T, error) {
	switch v := src.(type) {
	case int64:
		return t.parse(v)
	case int32:
		return t.parse(int64(v))
	case int16:
		return t.parse(int64(v))
	case nil:
		return 0, t.unknown("NULL")
	default:
		return 0, fmt.Errorf("cannot scan %T into %s", src, t.kind)
	}
}

// TaskStatus is the workflow state of a Task.
type TaskStatus int16

const (
	TaskWishlist TaskStatus = iota
	TaskTodo
	TaskPlanningAndEstimating
	TaskInQueue
	TaskInProgress
	TaskToReview
	TaskInReviewal
	TaskComplete
)

var taskStatuses = enumTable[TaskStatus]{
	kind:  "task status",
	names: []string{"Wishlist", "Todo", "PlanningAndEstimating", "InQueue", "InProgress", "ToReview", "InReviewal", "Complete"},
}

func ParseTaskStatus(code int64) (TaskStatus, error) { return taskStatuses.parse(code) }

func (s TaskStatus) String() string { return taskStatuses.name(s) }

func (s TaskStatus) MarshalJSON() ([]byte, error) { return json.Marshal(int16(s)) }

func (s *TaskStatus) UnmarshalJSON(data []byte) (err error) {
	*s, err = taskStatuses.unmarshal(data)
	return err
}

func (s TaskStatus) Value() (driver.Value, error) { return int64(s), nil }

func (s *TaskStatus) Scan(src any) (err error) {
	*s, err = taskStatuses.scan(src)
	return err
}

// AssociationType tags which record a File or Note is attached to.
type AssociationType int16

const (
	AssociationOrganization AssociationType = iota
	AssociationProject
	AssociationTask
	AssociationEntity
	AssociationContact
	AssociationMilestone
	AssociationUser
)

var associationTypes = enumTable[AssociationType]{
	kind:  "association type",
	names: []string{"Organization", "Project", "Task", "Entity", "Contact", "Milestone", "User"},
}

func ParseAssociationType(code int64) (AssociationType, error) {
	return associationTypes.parse(code)
}

// ParseAssociationTypeName accepts a canonical name or a numeric code, as sent by forms.
func ParseAssociationTypeName(s string) (AssociationType, error) {
	return associationTypes.parseName(s)
}

func (a AssociationType) String() string { return associationTypes.name(a) }

func (a AssociationType) MarshalJSON() ([]byte, error) { return json.Marshal(int16(a)) }

func (a *AssociationType) UnmarshalJSON(data []byte) (err error) {
	*a, err = associationTypes.unmarshal(data)
	return err
}

func (a AssociationType) Value() (driver.Value, error) { return int64(a), nil }

func (a *AssociationType) Scan(src any) (err error) {
	*a, err = associationTypes.scan(src)
	return err
}

// EntityType distinguishes clients from suppliers.
type EntityType int16

const (
	EntityClient EntityType = iota
	EntitySupplier
)

var entityTypes = enumTable[EntityType]{
	kind:  "entity type",
	names: []string{"Client", "Supplier"},
}

func ParseEntityType(code int64) (EntityType, error) { return entityTypes.parse(code) }

func (e EntityType) String() string { return entityTypes.name(e) }

func (e EntityType) MarshalJSON() ([]byte, error) { return json.Marshal(int16(e)) }

func (e *EntityType) UnmarshalJSON(data []byte) (err error) {
	*e, err = entityTypes.unmarshal(data)
	return err
}

func (e EntityType) Value() (driver.Value, error) { return int64(e), nil }

func (e *EntityType) Scan(src any) (err error) {
	*e, err = entityTypes.scan(src)
	return err
}

// NotificationCategory tags both a Room subscription and the origin of an outgoing
// notification. Delivery requires exact equality; All is an ordinary value, not a wildcard.
type NotificationCategory int16

const (
	CategoryAll NotificationCategory = iota
	CategoryBoard
	CategoryEntity
	CategoryFile
	CategoryMilestone
	CategoryOrganization
	CategoryProject
	CategoryTask
	CategoryUser
	CategoryReport
	CategoryRoom
)

var notificationCategories = enumTable[NotificationCategory]{
	kind:  "notification category",
	names: []string{"All", "Board", "Entity", "File", "Milestone", "Organization", "Project", "Task", "User", "Report", "Room"},
}

// NotificationCategories lists every category in code order.
func NotificationCategories() []NotificationCategory {
	out := make([]NotificationCategory, len(notificationCategories.names))
	for i := range out {
		out[i] = NotificationCategory(i)
	}
	return out
}

func ParseNotificationCategory(code int64) (NotificationCategory, error) {
	return notificationCategories.parse(code)
}

func (c NotificationCategory) String() string { return notificationCategories.name(c) }

func (c NotificationCategory) MarshalJSON() ([]byte, error) { return json.Marshal(int16(c)) }

func (c *NotificationCategory) UnmarshalJSON(data []byte) (err error) {
	*c, err = notificationCategories.unmarshal(data)
	return err
}

func (c NotificationCategory) Value() (driver.Value, error) { return int64(c), nil }

func (c *NotificationCategory) Scan(src any) (err error) {
	*c, err = notificationCategories.scan(src)
	return err
}

// ServiceItemType distinguishes billable services from goods.
type ServiceItemType int16

const (
	ServiceItemService ServiceItemType = iota
	ServiceItemItem
)

var serviceItemTypes = enumTable[ServiceItemType]{
	kind:  "service item type",
	names: []string{"Service", "Item"},
}

func ParseServiceItemType(code int64) (ServiceItemType, error) {
	return serviceItemTypes.parse(code)
}

func (s ServiceItemType) String() string { return serviceItemTypes.name(s) }

func (s ServiceItemType) MarshalJSON() ([]byte, error) { return json.Marshal(int16(s)) }

func (s *ServiceItemType) UnmarshalJSON(data []byte) (err error) {
	*s, err = serviceItemTypes.unmarshal(data)
	return err
}

func (s ServiceItemType) Value() (driver.Value, error) { return int64(s), nil }

func (s *ServiceItemType) Scan(src any) (err error) {
	*s, err = serviceItemTypes.scan(src)
	return err
}

// ServiceValueType says when a service item is billed.
type ServiceValueType int16

const (
	ServiceValueHourly ServiceValueType = iota
	ServiceValueMilestone
	ServiceValueFull
)

var serviceValueTypes = enumTable[ServiceValueType]{
	kind:  "service value type",
	names: []string{"Hourly", "Milestone", "Full"},
}

var serviceValueLabels = [...]string{"Hourly Rate", "Milestone Completion", "Upon Completion"}

func ParseServiceValueType(code int64) (ServiceValueType, error) {
	return serviceValueTypes.parse(code)
}

func (s ServiceValueType) String() string { return serviceValueTypes.name(s) }

// Label is the human-readable billing description.
func (s ServiceValueType) Label() string {
	if int(s) < 0 || int(s) >= len(serviceValueLabels) {
		return s.String()
	}
	return serviceValueLabels[s]
}

func (s ServiceValueType) MarshalJSON() ([]byte, error) { return json.Marshal(int16(s)) }

func (s *ServiceValueType) UnmarshalJSON(data []byte) (err error) {
	*s, err = serviceValueTypes.unmarshal(data)
	return err
}

func (s ServiceValueType) Value() (driver.Value, error) { return int64(s), nil }

func (s *ServiceValueType) Scan(src any) (err error) {
	*s, err = serviceValueTypes.scan(src)
	return err
}
