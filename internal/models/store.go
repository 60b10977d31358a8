package models

// StoreLocation is a physical supermarket location. Coordinates are WGS84 degrees.
type StoreLocation struct {
	ID      string  `json:"id" yaml:"id" dynamodbav:"id"`
	Name    string  `json:"name" yaml:"name" dynamodbav:"name"`
	Chain   string  `json:"chain" yaml:"chain" dynamodbav:"chain"`
	Address string  `json:"address,omitempty" yaml:"address" dynamodbav:"address"`
	Lat     float64 `json:"lat" yaml:"lat" dynamodbav:"lat"`
	Lon     float64 `json:"lon" yaml:"lon" dynamodbav:"lon"`
}

// NearbyStore is a store annotated with its distance from the user, in statute miles
type NearbyStore struct {
	StoreLocation
	Distance float64 `json:"distance"`
}
