package transcript

import (
	"fmt"
	"time"

	"livenotes/internal/models"
)

// ListLabel renders the listing entry "[YYYY/MM/DD]title[N]" where N is the
// number of points.
func (e *Exporter) ListLabel(session models.Session) string {
	date := time.UnixMilli(session.StartTime).In(e.location()).Format("2006/01/02")
	return fmt.Sprintf("[%s]%s[%d]", date, session.Title, len(session.Points))
}
