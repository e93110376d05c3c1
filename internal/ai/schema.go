package ai

import (
	_ "embed"
	"encoding/json"
)

//go:embed shipment_schema.json
var shipmentSchemaJSON []byte

// ShipmentSchema is the JSON schema constraining structured extraction of
// quotation documents. The shape mirrors the extraction engine's domains so
// AI results merge as a structured source.
func ShipmentSchema() json.RawMessage {
	return json.RawMessage(shipmentSchemaJSON)
}
