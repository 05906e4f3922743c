// Package testutil holds IFC fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WallOnlyIFC contains one wall named W1 carrying Pset_WallCommon.FireRating = 2 HR.
const WallOnlyIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('wall.ifc','2024-01-01T00:00:00',('Author'),('Org'),'ifcrag','ifcrag','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCWALL('2O2Fr$t4X7Zf8NOew3FLOH',$,'W1',$,$,$,$,$,$);
#2=IFCPROPERTYSINGLEVALUE('FireRating',$,IFCLABEL('2 HR'),$);
#3=IFCPROPERTYSET('1BtdzRdgD8ixW7fhHnQO0s',$,'Pset_WallCommon',$,(#2));
#4=IFCRELDEFINESBYPROPERTIES('3Kd$6aRxz0PxvYeN7Ro8uZ',$,$,$,(#1),#3);
ENDSEC;
END-ISO-10303-21;
`

// SampleIFC is a small IFC4 model with walls, a door, a window, a slab,
// property sets, a quantity set, a material and a binary property.
const SampleIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('sample.ifc','2024-01-01T00:00:00',('Jane Doe'),('Acme'),'ifcrag','ifcrag','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
/* owner history and units */
DATA;
#1=IFCPERSON($,'Doe','Jane',$,$,$,$,$);
#2=IFCORGANIZATION($,'Acme',$,$,$);
#3=IFCPERSONANDORGANIZATION(#1,#2,$);
#4=IFCAPPLICATION(#2,'1.0','ifcrag','ifcrag');
#5=IFCOWNERHISTORY(#3,#4,$,.ADDED.,$,$,$,1700000000);
#6=IFCSIUNIT(*,.LENGTHUNIT.,.MILLI.,.METRE.);
#7=IFCUNITASSIGNMENT((#6));
#8=IFCPROJECT('0YvctVUKr0kugbFTf53O9L',#5,'Sample Project',$,$,$,$,$,#7);
#10=IFCCARTESIANPOINT((0.,0.,0.));
#11=IFCAXIS2PLACEMENT3D(#10,$,$);
#12=IFCLOCALPLACEMENT($,#11);
#20=IFCWALL('2O2Fr$t4X7Zf8NOew3FLOH',#5,'W1','Exterior wall',$,#12,$,'W-01',.STANDARD.);
#21=IFCPROPERTYSINGLEVALUE('FireRating',$,IFCLABEL('2 HR'),$);
#22=IFCPROPERTYSINGLEVALUE('IsExternal',$,IFCBOOLEAN(.T.),$);
#23=IFCPROPERTYSINGLEVALUE('ThermalTransmittance',$,IFCTHERMALTRANSMITTANCEMEASURE(0.24),$);
#24=IFCPROPERTYSET('1BtdzRdgD8ixW7fhHnQO0s',#5,'Pset_WallCommon',$,(#21,#22,#23));
#25=IFCRELDEFINESBYPROPERTIES('3Kd$6aRxz0PxvYeN7Ro8uZ',#5,$,$,(#20),#24);
#26=IFCQUANTITYLENGTH('Length',$,$,5000.,$);
#27=IFCQUANTITYAREA('NetSideArea',$,$,15.5,$);
#28=IFCELEMENTQUANTITY('0tA4DSHd50le6Ov9Yu0I9X',#5,'Qto_WallBaseQuantities',$,$,(#26,#27));
#29=IFCRELDEFINESBYPROPERTIES('1Xv2QkAhr1Ax9WDWTnAfp9',#5,$,$,(#20),#28);
#30=IFCMATERIAL('Concrete',$,$);
#31=IFCRELASSOCIATESMATERIAL('2sJ0bPpOz5Ph8vH_lWGu1E',#5,$,$,(#20),#30);
#40=IFCDOOR('1hOSvn6df7F8_7GcBWlRGQ',#5,'D1',$,$,#12,$,$,2100.,900.,.DOOR.,.SINGLE_SWING_LEFT.,$);
#41=IFCPROPERTYSINGLEVALUE('Width',$,IFCPOSITIVELENGTHMEASURE(900.),#6);
#42=IFCPROPERTYSET('0KvCSQNZH5ewUd2vSkbS7H',#5,'Pset_DoorCommon',$,(#41));
#43=IFCRELDEFINESBYPROPERTIES('0q9tbMWJz6iOkpSdm1JR9O',#5,$,$,(#40),#42);
#50=IFCWINDOW('3cUkl32yn9qRSPvBJVyWYp',#5,'Win\X2\00E9\X0\',$,$,$,$,$,1200.,800.,$,$,$);
#60=IFCSLAB('1pPHnf7cXCpPsNEnQf8_6B',#5,$,$,$,$,$,$,.FLOOR.);
#70=IFCWALLSTANDARDCASE('0DWgwt6o1FOx7466fPk$jl',#5,'W2',$,$,$,$,$,$);
#71=IFCPROPERTYSINGLEVALUE('Thumbnail',$,IFCBINARY("0A1B"),$);
#72=IFCPROPERTYSET('2Uf8jP$Lr3eA2kT_5CmDVZ',#5,'Pset_Custom',$,(#71));
#73=IFCRELDEFINESBYPROPERTIES('1f4G_wRw57wQYx9hYc0T2o',#5,$,$,(#70),#72);
ENDSEC;
END-ISO-10303-21;
`

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
