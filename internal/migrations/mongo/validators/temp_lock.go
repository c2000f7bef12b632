package validators

import "go.mongodb.org/mongo-driver/bson"

var TempLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"room_id", "user_id", "locked_at", "expires_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"room_id":    bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"user_id":    bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
			"locked_at":  bson.M{"bsonType": "date"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
