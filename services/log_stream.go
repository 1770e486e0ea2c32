package services

import (
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order-app/realtime"
)

// LogStreamHook meneruskan entry logrus ke panel dev sebagai event
// SERVER_LOG. Panel dev jadi bisa melihat log server hidup-hidup tanpa
// akses shell ke mesin.
type LogStreamHook struct {
	bus *realtime.Bus
}

func NewLogStreamHook(bus *realtime.Bus) *LogStreamHook {
	return &LogStreamHook{bus: bus}
}

func (h *LogStreamHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

// Fire tidak boleh gagal: pengiriman ke klien best-effort dan error
// transport sudah ditelan di lapisan realtime.
func (h *LogStreamHook) Fire(entry *logrus.Entry) error {
	h.bus.PublishToKind(realtime.KindDev,
		realtime.NewServerLogEvent(entry.Level.String(), entry.Message, entry.Time))
	return nil
}
