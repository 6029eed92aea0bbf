package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backendprojects/graph/model"
)

func newID() string {
	return primitive.NewObjectID().Hex()
}

// toDoc converts v into its stored representation using the bson tags of
// the model types, so every backend sees the same field names.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

func fromDoc[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	out := new(T)
	if err := bson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// withID returns the document with a fresh id unless it already carries one.
func withID(doc bson.M) bson.M {
	if id, ok := doc[model.FieldID].(string); !ok || id == "" {
		doc[model.FieldID] = newID()
	}
	return doc
}
