package category

type DefaultCategory struct {
	Name        string
	Description string
	Icon        string
	Color       string
	ParentSlug  string
}

// DefaultCategories lists parents before their children.
var DefaultCategories = []DefaultCategory{
	{Name: "Electronics", Description: "Laptops, phones, tablets, and other electronic devices", Icon: "laptop", Color: "from-blue-500 to-blue-600"},
	{Name: "Vehicles", Description: "Cars, motorcycles, bikes, and other vehicles", Icon: "car", Color: "from-red-500 to-red-600"},
	{Name: "Furniture", Description: "Sofas, beds, chairs, tables, and other furniture", Icon: "couch", Color: "from-green-500 to-green-600"},
	{Name: "Properties", Description: "Houses, apartments, land, and other properties", Icon: "home", Color: "from-yellow-500 to-yellow-600"},
	{Name: "Fashion", Description: "Clothing, shoes, accessories, and more", Icon: "tshirt", Color: "from-purple-500 to-purple-600"},
	{Name: "Sports & Outdoors", Description: "Sports equipment, outdoor gear, and related items", Icon: "basketball-ball", Color: "from-indigo-500 to-indigo-600"},
	{Name: "Collectibles", Description: "Antiques, art, coins, stamps, and other collectibles", Icon: "gem", Color: "from-pink-500 to-pink-600"},
	{Name: "Jobs", Description: "Job offerings and services", Icon: "briefcase", Color: "from-teal-500 to-teal-600"},

	{Name: "Laptops", Description: "Laptops and notebooks", Icon: "laptop", Color: "from-blue-400 to-blue-500", ParentSlug: "electronics"},
	{Name: "Smartphones", Description: "Mobile phones and accessories", Icon: "mobile", Color: "from-blue-400 to-blue-500", ParentSlug: "electronics"},
	{Name: "Cars", Description: "Used and new cars for sale", Icon: "car", Color: "from-red-400 to-red-500", ParentSlug: "vehicles"},
	{Name: "Sofas", Description: "Couches, sofas, and sectionals", Icon: "couch", Color: "from-green-400 to-green-500", ParentSlug: "furniture"},
	{Name: "Full-time", Description: "Full-time job opportunities", Icon: "briefcase", Color: "from-teal-400 to-teal-500", ParentSlug: "jobs"},
}
