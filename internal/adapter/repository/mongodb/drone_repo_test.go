package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aeromarket/drone-service/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildDroneQuery_Empty(t *testing.T) {
	query := buildDroneQuery(domain.DroneFilter{})
	assert.Empty(t, query)
}

func TestBuildDroneQuery_FreeText(t *testing.T) {
	query := buildDroneQuery(domain.DroneFilter{Query: "agri+mapper"})

	or, ok := query["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	titleClause := or[0].(bson.M)
	pattern, ok := titleClause["title"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "i", pattern.Options)
	// regex metacharacters in user input must be matched literally
	assert.Equal(t, `agri\+mapper`, pattern.Pattern)
}

func TestBuildDroneQuery_FieldFilters(t *testing.T) {
	status := domain.StatusActive
	query := buildDroneQuery(domain.DroneFilter{
		Category:  "agriculture",
		Condition: "used",
		Location:  "Barcelona",
		OwnerID:   "owner-1",
		Status:    &status,
	})

	assert.Equal(t, "agriculture", query["category"])
	assert.Equal(t, "used", query["condition"])
	assert.Equal(t, "Barcelona", query["location"])
	assert.Equal(t, "owner-1", query["owner_id"])
	assert.Equal(t, "active", query["status"])
	assert.NotContains(t, query, "price")
	assert.NotContains(t, query, "$or")
}

func TestBuildDroneQuery_PriceRange(t *testing.T) {
	t.Run("both bounds inclusive", func(t *testing.T) {
		query := buildDroneQuery(domain.DroneFilter{PriceMin: floatPtr(100), PriceMax: floatPtr(500)})
		assert.Equal(t, bson.M{"$gte": 100.0, "$lte": 500.0}, query["price"])
	})

	t.Run("only min", func(t *testing.T) {
		query := buildDroneQuery(domain.DroneFilter{PriceMin: floatPtr(0)})
		assert.Equal(t, bson.M{"$gte": 0.0}, query["price"])
	})

	t.Run("only max", func(t *testing.T) {
		query := buildDroneQuery(domain.DroneFilter{PriceMax: floatPtr(250)})
		assert.Equal(t, bson.M{"$lte": 250.0}, query["price"])
	})
}

func TestToDroneDocumentRoundTrip(t *testing.T) {
	reviewer := primitive.NewObjectID().Hex()
	drone, err := domain.NewDrone("owner-1", "DJI Mavic 3", "barely used", "photography", "used", "Madrid", 1499.99, false)
	require.NoError(t, err)
	drone.ID = primitive.NewObjectID().Hex()
	drone.Ratings = []domain.Review{{ReviewerID: reviewer, Rating: 4, Comment: "solid"}}

	doc, err := toDroneDocument(drone)
	require.NoError(t, err)

	got := toDroneEntity(doc)
	assert.Equal(t, drone.ID, got.ID)
	assert.Equal(t, drone.Title, got.Title)
	assert.Equal(t, drone.Price, got.Price)
	assert.Equal(t, domain.StatusActive, got.Status)
	require.Len(t, got.Ratings, 1)
	assert.Equal(t, reviewer, got.Ratings[0].ReviewerID)
	assert.Equal(t, int32(4), got.Ratings[0].Rating)
}

func TestToReviewDocument_InvalidReviewer(t *testing.T) {
	_, err := toReviewDocument(domain.Review{ReviewerID: "not-an-object-id", Rating: 5})
	assert.Error(t, err)
}
