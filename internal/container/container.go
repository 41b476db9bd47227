package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/genai"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary

	MongoDBClient *mongo.Client

	UserService     *services.UserService
	EventService    *services.EventService
	DescribeService *services.DescribeService
}

// NewContainer creates a new dependency injection container. A nil mongo
// client selects the in-memory store; nil cloudinary/gemini clients disable
// upload and description drafting.
func NewContainer(
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	geminiClient *genai.Client,
	jwtSecret []byte,
) *Container {
	var eventRepo models.EventRepo
	var userRepo models.UserRepo
	if mongoDBClient != nil {
		repo := models.MongodbNewRepo(mongoDBClient)
		eventRepo = repo
		userRepo = repo
	} else {
		repo := models.NewMemoryRepo()
		eventRepo = repo
		userRepo = repo
	}

	return &Container{
		Logger:          logger,
		Cloudinary:      cld,
		MongoDBClient:   mongoDBClient,
		UserService:     services.NewUserService(userRepo, jwtSecret),
		EventService:    services.NewEventService(eventRepo, userRepo),
		DescribeService: services.NewDescribeService(geminiClient),
	}
}
