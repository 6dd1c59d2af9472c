package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений (5 полей: минуты часы дни месяцы дни_недели).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// DueSince проверяет, попадает ли срабатывание cron-выражения
// в интервал (lastRunAt, now].
//
// lastRunAt == nil означает "ещё ни разу не запускалась" — такая
// автоматизация due безусловно.
func DueSince(cronExpr string, lastRunAt *time.Time, now time.Time) (bool, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return false, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	if lastRunAt == nil {
		return true, nil
	}

	// Next возвращает строго следующее срабатывание после lastRunAt,
	// что и даёт полуинтервал (lastRunAt, now]
	next := schedule.Next(*lastRunAt)
	return !next.After(now), nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
// Используется API при создании/обновлении recurring автоматизаций.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}
