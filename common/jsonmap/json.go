package jsonmap

import "encoding/json"

func jsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func jsonUnmarshalMap(data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromStruct converts any JSON-serializable value into a JSONMap.
func FromStruct(v interface{}) (JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc, err := jsonUnmarshalMap(data)
	if err != nil {
		return nil, err
	}
	return JSONMap(doc), nil
}
