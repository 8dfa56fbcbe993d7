package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/models"
	"github.com/georgeGeorgakakos/optimusddc/pkg/sqlutil"
	"github.com/georgeGeorgakakos/optimusddc/pkg/uri"
)

// UserService covers catalog users and their resource relations.
type UserService interface {
	GetUser(ctx context.Context, id string) models.User
	GetUsers(ctx context.Context) []models.User
	CreateUpdateUser(ctx context.Context, user models.User) error

	AddRelation(ctx context.Context, resourceKey, userID, relation string) error
	DeleteRelation(ctx context.Context, resourceKey, userID, relation string) error
	TablesByRelation(ctx context.Context, userEmail, relation string) ([]models.TableSummary, error)
	FrequentlyUsedTables(ctx context.Context, userEmail string) []models.TableSummary
}

type userService struct {
	executor CommandExecutor
	logger   *zap.Logger
}

func NewUserService(executor CommandExecutor, logger *zap.Logger) UserService {
	return &userService{executor: executor, logger: logger}
}

// GetUser never fails: an unknown or unreachable user degrades to a default
// profile derived from the requested id.
func (s *userService) GetUser(ctx context.Context, id string) models.User {
	fallback := models.User{
		Email:       id + "@company.com",
		DisplayName: id,
		FullName:    id,
		IsActive:    true,
	}
	if sqlutil.GuardArguments(map[string]string{"user_id": id}) != nil {
		s.logger.Warn("user lookup rejected", zap.String("user_id", id))
		return fallback
	}

	records, err := s.executor.Execute(ctx,
		fmt.Sprintf("SELECT * FROM users WHERE user_id='%s' LIMIT 1;", sqlutil.Escape(id)))
	if err != nil || len(records) == 0 {
		return fallback
	}

	rec := records[0]
	user := fallback
	if email := rec.String("email"); email != "" {
		user.Email = email
	}
	if name := rec.String("display_name"); name != "" {
		user.DisplayName = name
		user.FullName = name
	}
	user.TeamName = rec.String("team_name")
	user.Role = rec.String("employee_type")
	return user
}

func (s *userService) GetUsers(ctx context.Context) []models.User {
	records, err := s.executor.Execute(ctx, "select * from users;")
	if err != nil {
		return []models.User{}
	}
	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		users = append(users, models.User{
			Email:       rec.String("email"),
			DisplayName: rec.String("display_name"),
			FullName:    rec.String("display_name"),
			IsActive:    true,
		})
	}
	return users
}

func (s *userService) CreateUpdateUser(ctx context.Context, user models.User) error {
	userID := user.Email
	if user.DisplayName == "" {
		user.DisplayName = userID
	}
	if err := sqlutil.GuardArguments(map[string]string{
		"user_id":      userID,
		"email":        user.Email,
		"display_name": user.DisplayName,
	}); err != nil {
		return err
	}

	existing, err := s.executor.Execute(ctx,
		fmt.Sprintf("select user_id from users where user_id='%s';", sqlutil.Escape(userID)))
	if err != nil {
		return err
	}

	var query string
	if len(existing) > 0 {
		query = fmt.Sprintf(
			"update users set email='%s', display_name='%s', is_active=%t where user_id='%s';",
			sqlutil.Escape(user.Email), sqlutil.Escape(user.DisplayName), user.IsActive,
			sqlutil.Escape(userID))
	} else {
		query = fmt.Sprintf(
			"insert into users (user_id, email, display_name, is_active) values ('%s', '%s', '%s', %t);",
			sqlutil.Escape(userID), sqlutil.Escape(user.Email), sqlutil.Escape(user.DisplayName),
			user.IsActive)
	}
	if _, err := s.executor.Execute(ctx, query); err != nil {
		return err
	}
	s.logger.Info("user upserted", zap.String("user_id", userID))
	return nil
}

func (s *userService) AddRelation(ctx context.Context, resourceKey, userID, relation string) error {
	if err := models.ValidateRelation(relation); err != nil {
		return err
	}
	if err := sqlutil.GuardArguments(map[string]string{
		"resource_id": resourceKey,
		"user_id":     userID,
	}); err != nil {
		return err
	}

	query := fmt.Sprintf(
		"insert into user_resource_relations (resource_id, user_id, relation_type, resource_type) values ('%s', '%s', '%s', 'table');",
		sqlutil.Escape(resourceKey), sqlutil.Escape(userID), relation)
	_, err := s.executor.Execute(ctx, query)
	return err
}

func (s *userService) DeleteRelation(ctx context.Context, resourceKey, userID, relation string) error {
	if err := models.ValidateRelation(relation); err != nil {
		return err
	}
	if err := sqlutil.GuardArguments(map[string]string{
		"resource_id": resourceKey,
		"user_id":     userID,
	}); err != nil {
		return err
	}

	query := fmt.Sprintf(
		"delete from user_resource_relations where resource_id='%s' and user_id='%s' and relation_type='%s';",
		sqlutil.Escape(resourceKey), sqlutil.Escape(userID), relation)
	_, err := s.executor.Execute(ctx, query)
	return err
}

func (s *userService) TablesByRelation(ctx context.Context, userEmail, relation string) ([]models.TableSummary, error) {
	if err := models.ValidateRelation(relation); err != nil {
		return nil, err
	}
	if err := sqlutil.GuardArguments(map[string]string{"user_email": userEmail}); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT t.* FROM datacatalog t JOIN user_table_relations r ON t._id = r.table_id WHERE r.user_email='%s' AND r.relation_type='%s';",
		sqlutil.Escape(userEmail), relation)
	records, err := s.executor.Execute(ctx, query)
	if err != nil {
		return []models.TableSummary{}, nil
	}

	tables := make([]models.TableSummary, 0, len(records))
	for _, rec := range records {
		schema := rec.String("metadata_type")
		if schema == "" {
			schema = "default"
		}
		database := rec.String("component")
		if database == "" {
			database = uri.DefaultDatabase
		}
		name := rec.String("name")
		if name == "" {
			name = "unknown"
		}
		tables = append(tables, models.TableSummary{
			Key:         uri.Encode(database, schema, name),
			Name:        name,
			Schema:      schema,
			Database:    database,
			Description: rec.String("description"),
		})
	}
	return tables, nil
}

func (s *userService) FrequentlyUsedTables(ctx context.Context, userEmail string) []models.TableSummary {
	if sqlutil.GuardArguments(map[string]string{"user_email": userEmail}) != nil {
		return []models.TableSummary{}
	}

	query := fmt.Sprintf(
		"select resource_id, count(*) as usage_count from user_resource_relations where user_id='%s' and relation_type='read' group by resource_id order by usage_count desc limit 10;",
		sqlutil.Escape(userEmail))
	records, err := s.executor.Execute(ctx, query)
	if err != nil {
		return []models.TableSummary{}
	}

	tables := make([]models.TableSummary, 0, len(records))
	for _, rec := range records {
		id := uri.Decode(rec.String("resource_id"))
		tables = append(tables, models.TableSummary{
			Key:         id.Key(),
			Name:        id.Name,
			Schema:      id.Schema,
			Cluster:     "default",
			Database:    id.Database,
			Description: "Frequently accessed dataset " + id.Name,
		})
	}
	return tables
}
