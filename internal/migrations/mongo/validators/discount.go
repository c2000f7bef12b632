package validators

import "go.mongodb.org/mongo-driver/bson"

var DiscountValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"code", "percentage", "is_active"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"code":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
			"percentage":  bson.M{"bsonType": []string{"double", "int", "long"}, "exclusiveMinimum": true, "minimum": 0, "maximum": 100},
			"property_id": bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"expire_date": bson.M{"bsonType": "date"},
			"is_active":   bson.M{"bsonType": "bool"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}

var DiscountUsageValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user_id", "discount_code", "used_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"user_id":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
			"discount_code": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
			"used_at":       bson.M{"bsonType": "date"},
		},
	},
}
