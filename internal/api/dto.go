package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tagtree/internal/tag"
	"github.com/starford/tagtree/internal/treeservice"
)

// TreeResponse is the display tree snapshot (aliased from the service layer).
type TreeResponse = treeservice.TreeView

// SelectionResponse lists the selected node ids (aliased from the service layer).
type SelectionResponse = treeservice.SelectionView

// NodeResponse describes one data node (aliased from the service layer).
type NodeResponse = treeservice.NodeDetail

// AppliedResponse reports whether an intent changed anything.
type AppliedResponse struct {
	Applied bool `json:"applied" example:"true"`
}

// SelectRequest replaces the selection. An empty list clears it.
type SelectRequest struct {
	IDs []uint64 `json:"ids" example:"4,7"`
}

// Validate validates the request.
func (r SelectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.NotNil),
	)
}

// RenameRequest renames the primary selected node.
type RenameRequest struct {
	Name string `json:"name" example:"spawn" validate:"required"`
}

// Validate validates the request.
func (r RenameRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

// EditRequest sets the value of the primary selected node.
type EditRequest struct {
	Value string `json:"value" example:"42"`
}

// CreateRequest creates a tag under the primary selected node.
type CreateRequest struct {
	Kind  string `json:"kind" example:"int" validate:"required"`
	Name  string `json:"name,omitempty" example:"seed"`
	Value string `json:"value,omitempty" example:"0"`
}

// Validate validates the request.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.By(tagType)),
	)
}

func tagType(v any) error {
	s, _ := v.(string)
	_, err := tag.ParseType(s)
	return err
}

// OpenRequest replaces the opened paths.
type OpenRequest struct {
	Paths   []string `json:"paths" example:"./worlds" validate:"required"`
	Discard bool     `json:"discard,omitempty"`
}

// Validate validates the request.
func (r OpenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Paths, validation.Required, validation.Each(validation.Required)),
	)
}

// OpenResponse lists the opened paths. Error carries the paths that could
// not be opened.
type OpenResponse struct {
	Opened []string `json:"opened"`
	Error  string   `json:"error,omitempty"`
}

// RootLabelRequest relabels the data root.
type RootLabelRequest struct {
	Label string `json:"label" example:"Worlds" validate:"required"`
}

// Validate validates the request.
func (r RootLabelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Label, validation.Required, validation.Length(1, 200)),
	)
}

// SearchRequest starts a search. At least one field must be set.
type SearchRequest struct {
	Name  string `json:"name,omitempty" example:"health"`
	Value string `json:"value,omitempty" example:"20"`
}

// Validate validates the request.
func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.When(r.Value == "").Error("name or value is required")),
	)
}
