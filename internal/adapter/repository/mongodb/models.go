package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aeromarket/drone-service/internal/domain"
)

type reviewDocument struct {
	ReviewerID primitive.ObjectID `bson:"user_id"`
	Rating     int32              `bson:"rating"`
	Comment    string             `bson:"comment,omitempty"`
}

type droneDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	LegacyID    string             `bson:"id,omitempty"` // secondary business key, kept under its historical field name
	OwnerID     string             `bson:"owner_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category,omitempty"`
	Condition   string             `bson:"condition,omitempty"`
	Location    string             `bson:"location,omitempty"`
	Price       float64            `bson:"price"`
	Status      string             `bson:"status"`
	IsService   bool               `bson:"isService"`
	Ratings     []reviewDocument   `bson:"ratings"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type userDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	UserName  string               `bson:"userName"`
	Email     string               `bson:"email"`
	Role      string               `bson:"role,omitempty"`
	IsDeleted bool                 `bson:"isDeleted"`
	Favorites []primitive.ObjectID `bson:"favorites"`
}

func toReviewDocument(r domain.Review) (reviewDocument, error) {
	reviewerID, err := primitive.ObjectIDFromHex(r.ReviewerID)
	if err != nil {
		return reviewDocument{}, fmt.Errorf("invalid reviewer ID format: %w", err)
	}
	return reviewDocument{
		ReviewerID: reviewerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
	}, nil
}

func toDroneDocument(d *domain.Drone) (*droneDocument, error) {
	doc := &droneDocument{
		LegacyID:    d.LegacyID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Condition:   d.Condition,
		Location:    d.Location,
		Price:       d.Price,
		Status:      string(d.Status),
		IsService:   d.IsService,
		Ratings:     make([]reviewDocument, 0, len(d.Ratings)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, r := range d.Ratings {
		rd, err := toReviewDocument(r)
		if err != nil {
			return nil, err
		}
		doc.Ratings = append(doc.Ratings, rd)
	}
	if d.ID != "" {
		objID, err := primitive.ObjectIDFromHex(d.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid drone ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toDroneEntity(doc *droneDocument) *domain.Drone {
	ratings := make([]domain.Review, len(doc.Ratings))
	for i, rd := range doc.Ratings {
		ratings[i] = domain.Review{
			ReviewerID: rd.ReviewerID.Hex(),
			Rating:     rd.Rating,
			Comment:    rd.Comment,
		}
	}
	return &domain.Drone{
		ID:          doc.ID.Hex(),
		LegacyID:    doc.LegacyID,
		OwnerID:     doc.OwnerID,
		Title:       doc.Title,
		Description: doc.Description,
		Category:    doc.Category,
		Condition:   doc.Condition,
		Location:    doc.Location,
		Price:       doc.Price,
		Status:      domain.DroneStatus(doc.Status),
		IsService:   doc.IsService,
		Ratings:     ratings,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

// storeErr tags a persistence failure with the ErrRepository kind while
// keeping the underlying cause in the message.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrRepository, op, err)
}

func toUserEntity(doc *userDocument) *domain.User {
	favorites := make([]string, len(doc.Favorites))
	for i, f := range doc.Favorites {
		favorites[i] = f.Hex()
	}
	return &domain.User{
		ID:        doc.ID.Hex(),
		UserName:  doc.UserName,
		Email:     doc.Email,
		Role:      domain.UserRole(doc.Role),
		IsDeleted: doc.IsDeleted,
		Favorites: favorites,
	}
}
