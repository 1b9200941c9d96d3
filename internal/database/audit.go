package database

import "dashkpis/internal/models"

// helper для записи в журнал аудита
func CreateAuditLog(userID int64, entity string, entityID int64, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = DB.Create(&record).Error
}

// ListAuditLogs отдаёт записи от новых к старым. Без журнала список пуст.
func ListAuditLogs(entity string, limit int) ([]models.AuditLog, error) {
	if DB == nil {
		return []models.AuditLog{}, nil
	}
	q := DB.Order("created_at desc").Limit(limit)
	if entity != "" {
		q = q.Where("entity = ?", entity)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func Enabled() bool { return DB != nil }
