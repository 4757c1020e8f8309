// Package models - registry for models.
package models

import (
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/tinyyolov2"
	"github.com/pkg/errors"
)

// NewModel creates a new detection model instance based on the specified model name.
//
// Arguments:
//   - args: The model name plus optional path and tensor name overrides.
//
// Returns:
//   - model.Model: A configured model instance.
//   - error: model.ErrUnsupportedModel (wrapped) for an unknown name.
//
// Example:
//
// ```go
//
//	m, err := NewModel(model.NewModelArgs{
//	    Name: model.ModelNameTinyYOLOv2VOC,
//	    Path: "/models/TinyYolo2_model.onnx",
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create detection model: %v", err)
//	}
//
// ```
func NewModel(args model.NewModelArgs) (model.Model, error) {
	switch args.Name {
	case model.ModelNameTinyYOLOv2VOC:
		return tinyyolov2.NewVOC(args), nil
	case model.ModelNameTinyYOLOv2COCO:
		return tinyyolov2.NewCOCO(args), nil
	default:
		return nil, errors.Wrapf(model.ErrUnsupportedModel, "%q", args.Name)
	}
}

// Names lists every registered model name.
func Names() []model.Name {
	return []model.Name{
		model.ModelNameTinyYOLOv2VOC,
		model.ModelNameTinyYOLOv2COCO,
	}
}
