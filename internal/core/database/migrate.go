package database

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gradebook/internal/feature/assignment"
	"gradebook/internal/feature/grade"
	"gradebook/internal/feature/group"
	"gradebook/internal/feature/subject"
	"gradebook/internal/feature/user"
)

// Models 迁移顺序：先独立表，后引用表
func Models() []any {
	return []any{
		&group.GroupModel{},
		&user.UserModel{},
		&group.GroupTeacherModel{},
		&subject.SubjectModel{},
		&assignment.AssignmentModel{},
		&assignment.SubmissionModel{},
		&grade.GradeModel{},
	}
}

func Migrate(db *gorm.DB, l *zap.Logger) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return errors.Wrapf(err, "automigrate %T", m)
		}
		l.Debug("table migrated", zap.String("model", modelName(m)))
	}
	return nil
}

func modelName(m any) string {
	if t, ok := m.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return "?"
}
