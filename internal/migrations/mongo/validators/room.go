package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"property_id", "name", "price", "total_room", "is_available"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"property_id":  bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"name":         bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"price":        bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
			"total_room":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"is_available": bson.M{"bsonType": "bool"},
			"created_at":   bson.M{"bsonType": "date"},
		},
	},
}

// RoomGuardValidator covers the per-room documents reservation transactions
// bump. _id is the room id.
var RoomGuardValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"version"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"version":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
