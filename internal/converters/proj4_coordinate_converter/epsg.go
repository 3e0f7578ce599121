package proj4_coordinate_converter

import "fmt"

var fixedDefinitions = map[int]string{
	4326: "+proj=longlat +datum=WGS84 +no_defs",
	4258: "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs",
	4978: "+proj=geocent +datum=WGS84 +units=m +no_defs",
	3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs",
	3395: "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs",
}

// Returns the proj4 definition of a supported EPSG code
func definition(srid int) (string, error) {
	if def, ok := fixedDefinitions[srid]; ok {
		return def, nil
	}
	switch {
	case srid >= 32601 && srid <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", srid-32600), nil
	case srid >= 32701 && srid <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", srid-32700), nil
	case srid >= 25828 && srid <= 25838:
		return fmt.Sprintf("+proj=utm +zone=%d +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", srid-25800), nil
	}
	return "", fmt.Errorf("unsupported srid: EPSG:%d", srid)
}

func isGeographic(srid int) bool {
	return srid == 4326 || srid == 4258
}
