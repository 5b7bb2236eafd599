package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type preferenceDoc struct {
	Mode      string    `firestore:"mode"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type preferenceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newPreferenceRepository(client *firestore.Client) *preferenceRepository {
	return &preferenceRepository{client: client}
}

func (r *preferenceRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_preferences"
	}
	return "preferences"
}

func (r *preferenceRepository) doc() *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc("global")
}

func (r *preferenceRepository) GetMode(ctx context.Context) (types.Mode, error) {
	snap, err := r.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.ModeSignature, nil
		}
		return "", goerr.Wrap(err, "failed to get preference")
	}

	var d preferenceDoc
	if err := snap.DataTo(&d); err != nil {
		return "", goerr.Wrap(err, "failed to decode preference")
	}

	mode := types.Mode(d.Mode)
	if !mode.IsValid() {
		return types.ModeSignature, nil
	}
	return mode, nil
}

func (r *preferenceRepository) SetMode(ctx context.Context, mode types.Mode) error {
	if !mode.IsValid() {
		return goerr.New("invalid mode", goerr.V("mode", mode))
	}

	_, err := r.doc().Set(ctx, &preferenceDoc{
		Mode:      mode.String(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to set preference", goerr.V("mode", mode))
	}
	return nil
}
