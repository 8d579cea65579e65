package convert

import (
	"go.uber.org/zap"

	"adt/document"
	"adt/markup"
	"adt/transport"
)

// CollectTextUnits walks the frame and encodes every text node into a
// translatable unit. A node whose runs cannot be read is skipped with a
// warning; its siblings still export.
func CollectTextUnits(s document.Store, frame document.NodeID, log *zap.Logger) []transport.TextUnit {
	if log == nil {
		log = zap.NewNop()
	}
	var units []transport.TextUnit
	for _, id := range document.TextUnits(s, frame) {
		runs, err := document.ExtractRuns(s, id, log)
		if err != nil {
			log.Warn("Skipping text node, unable to read style runs",
				zap.String("node", string(id)), zap.Error(err))
			continue
		}
		units = append(units, transport.TextUnit{
			NodeID:     string(id),
			Name:       s.Name(id),
			Characters: s.Text(id),
			Markup:     markup.Encode(runs),
		})
	}
	return units
}
