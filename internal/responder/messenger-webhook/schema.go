// internal/responder/messenger-webhook/schema.go
package messengerwebhook

import "messenger-responder/internal/common/validation"

var envelopeSchema = validation.MustCompile(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["object", "entry"],
  "properties": {
    "object": {"type": "string"},
    "entry": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "messaging": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["sender"],
              "properties": {
                "sender": {
                  "type": "object",
                  "required": ["id"],
                  "properties": {"id": {"type": "string"}}
                },
                "message": {
                  "type": "object",
                  "properties": {
                    "text": {"type": "string"},
                    "is_echo": {"type": "boolean"},
                    "nlp": {
                      "type": "object",
                      "properties": {
                        "entities": {
                          "type": "object",
                          "additionalProperties": {
                            "type": "array",
                            "items": {
                              "type": "object",
                              "properties": {"confidence": {"type": "number"}}
                            }
                          }
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`)
