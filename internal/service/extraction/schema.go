package extraction

import "encoding/json"

const schemaName = "extraction_result"

// Closed schema: two top-level objects, every property named, typed and
// explicitly nullable, no additional properties. The provider must set
// fields the transcript does not mention to null instead of omitting or
// inventing them, so downstream reconciliation can treat each field as
// present-or-null without further validation.
var extractionSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "patient": {
      "type": "object",
      "properties": {
        "name_surnames": {
          "type": "string",
          "description": "Full name of the patient"
        },
        "mail": { "type": ["string", "null"] },
        "age": { "type": ["number", "null"] },
        "phone": { "type": ["string", "null"] },
        "gender": {
          "type": ["string", "null"],
          "enum": ["M", "F", "O", null]
        },
        "height": {
          "type": ["number", "null"],
          "description": "Height normalized to centimeters"
        },
        "weight": {
          "type": ["number", "null"],
          "description": "Weight in kg"
        }
      },
      "required": ["name_surnames", "mail", "age", "phone", "gender", "height", "weight"],
      "additionalProperties": false
    },
    "consultation": {
      "type": "object",
      "properties": {
        "objetivo_calorias": { "type": ["number", "null"] },
        "objetivo_descripcion": { "type": ["string", "null"] },
        "objetivo_tipo": { "type": ["array", "null"], "items": { "type": "string" } },
        "objetivo_justificacion": { "type": ["string", "null"] },
        "resultados_analiticos": { "type": ["string", "null"] },
        "suplementos": { "type": ["string", "null"] },
        "alergias_intolerancias": { "type": ["array", "null"], "items": { "type": "string" } },
        "cirugias": { "type": ["string", "null"] },
        "medicacion": { "type": ["string", "null"] },
        "patologias": { "type": ["array", "null"], "items": { "type": "string" } },
        "actividad_fisica_duracion": { "type": ["string", "null"] },
        "actividad_fisica_tipo": { "type": ["string", "null"] },
        "actividad_fisica_perfil": { "type": ["string", "null"] },
        "actividad_diaria": { "type": ["string", "null"] },
        "horario_dia_normal": { "type": ["string", "null"] },
        "horas_sueno": { "type": ["number", "null"] },
        "cantidad_agua": { "type": ["string", "null"] },
        "gustos_preferencias": { "type": ["array", "null"], "items": { "type": "string" } },
        "alimentos_evitar": { "type": ["array", "null"], "items": { "type": "string" } },
        "alimentos_priorizar": { "type": ["array", "null"], "items": { "type": "string" } }
      },
      "required": [
        "objetivo_calorias",
        "objetivo_descripcion",
        "objetivo_tipo",
        "objetivo_justificacion",
        "resultados_analiticos",
        "suplementos",
        "alergias_intolerancias",
        "cirugias",
        "medicacion",
        "patologias",
        "actividad_fisica_duracion",
        "actividad_fisica_tipo",
        "actividad_fisica_perfil",
        "actividad_diaria",
        "horario_dia_normal",
        "horas_sueno",
        "cantidad_agua",
        "gustos_preferencias",
        "alimentos_evitar",
        "alimentos_priorizar"
      ],
      "additionalProperties": false
    }
  },
  "required": ["patient", "consultation"],
  "additionalProperties": false
}`)
